package block

// computeHeaderChecksum implements the header checksum recurrence from
// spec.md §4.8: h = 1; for each field in (size, status, ts_created mod
// 2^16, ts_modified mod 2^16): h = (h*31 + field) mod modulus.
func computeHeaderChecksum(size, status, tsCreated, tsModified, modulus int64) int64 {
	h := int64(1)
	for _, f := range []int64{size, status, tsCreated % 65536, tsModified % 65536} {
		h = (h*31 + f) % modulus
	}
	return h
}

// computePayloadChecksum implements the payload checksum recurrence:
// p = 0; for each payload byte b: p = (p*31 + b) mod modulus.
func computePayloadChecksum(payload []byte, modulus int64) int64 {
	p := int64(0)
	for _, b := range payload {
		p = (p*31 + int64(b)) % modulus
	}
	return p
}

// computeMAC implements the MAC recurrence: m = MAGIC; for each field in
// (header_checksum, payload_checksum, size): m = (m*37 + field) mod
// modulus.
func computeMAC(magic, headerChecksum, payloadChecksum, size, modulus int64) int64 {
	m := magic
	for _, f := range []int64{headerChecksum, payloadChecksum, size} {
		m = (m*37 + f) % modulus
	}
	return m
}
