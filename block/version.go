package block

// BlockVersion is the compact four-field version record packed into a
// single small integer so it can travel as an EncryptedSize in the block
// header: major*1000 + minor*100 + patch*10 + reserved.
type BlockVersion struct {
	Major    uint16
	Minor    uint16
	Patch    uint16
	Reserved uint16
}

// CurrentVersion is the version stamped into every block this module
// creates.
var CurrentVersion = BlockVersion{Major: 1, Minor: 0, Patch: 0, Reserved: 0}

// Pack encodes the version as the single integer stored (encrypted) in a
// block header.
func (v BlockVersion) Pack() int64 {
	return int64(v.Major)*1000 + int64(v.Minor)*100 + int64(v.Patch)*10 + int64(v.Reserved)
}

// UnpackVersion decodes a packed version integer back into its four
// fields.
func UnpackVersion(packed int64) BlockVersion {
	reserved := packed % 10
	packed /= 10
	patch := packed % 10
	packed /= 10
	minor := packed % 10
	packed /= 10
	major := packed
	return BlockVersion{
		Major:    uint16(major),
		Minor:    uint16(minor),
		Patch:    uint16(patch),
		Reserved: uint16(reserved),
	}
}

// IsCompatibleWith reports whether a block stamped with v can be read by a
// caller whose own installed version is caller: majors must match and v's
// minor must be at least caller's minor (a caller can read anything the
// block's minor revision has grown to, within the same major).
func (v BlockVersion) IsCompatibleWith(caller BlockVersion) bool {
	return v.Major == caller.Major && v.Minor >= caller.Minor
}
