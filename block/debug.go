package block

import "fmt"

// debugInfo renders a best-effort human-readable snapshot of a block's
// decrypted state, mirroring the original debug_info() contract: it
// degrades gracefully rather than failing if a field cannot be decrypted
// (e.g. a corrupted or cross-context block), since the whole point of the
// call is to surface exactly that kind of problem to a human operator.
func debugInfo(b *EncryptedBlock) string {
	size, sizeErr := b.header.Size.Decrypt()
	status, statusErr := b.header.Status.Decrypt()
	created, createdErr := b.header.TsCreated.Decrypt()
	modified, modifiedErr := b.header.TsModified.Decrypt()
	version, versionErr := b.header.VersionField.Decrypt()

	field := func(label string, v int64, err error) string {
		if err != nil {
			return fmt.Sprintf("%s=<%v>", label, err)
		}
		return fmt.Sprintf("%s=%d", label, v)
	}

	statusStr := "<unknown>"
	if statusErr == nil {
		statusStr = Status(status).String()
	}

	return fmt.Sprintf(
		"EncryptedBlock{%s status=%s %s %s version=%s payload_cap=%d}",
		field("size", size, sizeErr),
		statusStr,
		field("ts_created", created, createdErr),
		field("ts_modified", modified, modifiedErr),
		func() string {
			if versionErr != nil {
				return fmt.Sprintf("<%v>", versionErr)
			}
			return fmt.Sprintf("%+v", UnpackVersion(version))
		}(),
		b.payloadCapacity,
	)
}
