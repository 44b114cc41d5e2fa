package yara

import "os/user"

// Externals are the per-file YARA external variables every compiled rule
// set may reference in its condition (§4.5). They must be defined on the
// Compiler with dummy values before compilation and rebound to the real
// per-file values on the Scanner before each scan.
type Externals struct {
	Filename  string
	Filepath  string
	Extension string
	Filetype  string
	MD5       string
	Owner     string
}

// dummyValue is substituted for every external that has no real value
// yet, matching the original scanner's placeholder convention.
const dummyValue = "-"

// Dummies returns the placeholder binding used at compile time, before
// any file has been examined.
func Dummies() Externals {
	return Externals{
		Filename:  dummyValue,
		Filepath:  dummyValue,
		Extension: dummyValue,
		Filetype:  dummyValue,
		MD5:       dummyValue,
		Owner:     "dummy",
	}
}

// ToMap renders the externals as an identifier-to-value map; ranging
// over it visits the identifiers in no fixed order.
func (e Externals) ToMap() map[string]string {
	return map[string]string{
		"filename":  e.Filename,
		"filepath":  e.Filepath,
		"extension": e.Extension,
		"filetype":  e.Filetype,
		"md5":       e.MD5,
		"owner":     e.Owner,
	}
}

// lookupOwner resolves the numeric UID of a file to a username, falling
// back to the dummy placeholder when the lookup fails (unknown UID,
// unsupported platform) rather than treating it as a scan error.
func lookupOwner(uid string) string {
	if uid == "" {
		return dummyValue
	}
	u, err := user.LookupId(uid)
	if err != nil {
		return dummyValue
	}
	return u.Username
}
