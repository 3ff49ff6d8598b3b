package cache

import cerrors "github.com/contentcache/contentcache/pkg/errors"

// fileMode records which letters appeared in an fopen-style mode string.
// Admission decisions key off the raw letters (a "w+" open creates an empty
// entry even though it grants read); permission checks use canRead/canWrite.
type fileMode struct {
	read   bool // 'r'
	write  bool // 'w'
	append bool // 'a'
	plus   bool // '+'
}

func (m fileMode) canRead() bool {
	return m.read || m.plus
}

func (m fileMode) canWrite() bool {
	return m.write || m.append || (m.read && m.plus)
}

// parseMode interprets a mode string over the letters r, w, a, +, b.
// 'b' is accepted and ignored; anything else is an InvalidMode error, as is
// a string granting no permission at all.
func parseMode(s string) (fileMode, error) {
	var m fileMode
	for _, r := range s {
		switch r {
		case 'r':
			m.read = true
		case 'w':
			m.write = true
		case 'a':
			m.append = true
		case '+':
			m.plus = true
		case 'b':
			// binary is the only mode
		default:
			return fileMode{}, cerrors.InvalidMode(s)
		}
	}
	if !m.read && !m.write && !m.append {
		return fileMode{}, cerrors.InvalidMode(s)
	}
	return m, nil
}
