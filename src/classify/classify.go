// Package classify implements the Dionysos file-type classifier (§4.1):
// it maps a file's magic/content signature to a FileType the Yara
// scanner uses to pick an evaluation mode.
package classify

import (
	"bytes"
	"os"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/rs/zerolog/log"
)

// FileType is the classifier's output.
type FileType int

const (
	Uncompressed FileType = iota
	Gzip
	Bzip2
	Xz
	Zip
	Evtx
	Reg
)

func (t FileType) String() string {
	switch t {
	case Gzip:
		return "gzip"
	case Bzip2:
		return "bzip2"
	case Xz:
		return "xz"
	case Zip:
		return "zip"
	case Evtx:
		return "evtx"
	case Reg:
		return "reg"
	default:
		return "uncompressed"
	}
}

// evtxMagic and regMagic are the raw signature bytes for the two
// container formats mimetype doesn't recognize on its own.
var (
	evtxMagic = []byte("ElfFile\x00")
	regMagic  = []byte("regf")
)

// Options gates which advisory classifications are honored, mirroring
// §4.1's "compressed classifications are only honored when the YARA
// scanner is configured with scan_compressed" contract.
type Options struct {
	ScanCompressed bool
	ScanEvtx       bool
	ScanReg        bool
}

// Classify determines the FileType of the file at path, reading at most
// its first few hundred bytes. It never returns an error: an unreadable
// file classifies as Uncompressed with a logged warning, and an
// unrecognized file classifies as Uncompressed without one.
func Classify(path string, opts Options) FileType {
	f, err := os.Open(path)
	if err != nil {
		log.Warn().Err(err).Str("path", path).Msg("unable to open file to determine its type")
		return Uncompressed
	}
	defer f.Close()

	head := make([]byte, 512)
	n, _ := f.Read(head)
	head = head[:n]

	raw := rawClassify(head)

	switch raw {
	case Gzip, Bzip2, Xz, Zip:
		if !opts.ScanCompressed {
			log.Warn().Str("path", path).Str("detected", raw.String()).
				Msg("file contains compressed data but will not be decompressed before the scan; consider using -C")
			return Uncompressed
		}
		return raw
	case Evtx:
		if !opts.ScanEvtx {
			return Uncompressed
		}
		return raw
	case Reg:
		if !opts.ScanReg {
			return Uncompressed
		}
		return raw
	default:
		return Uncompressed
	}
}

// rawClassify performs the unconditional magic-to-FileType mapping,
// before the scan_compressed/evtx/reg feature gates are applied.
func rawClassify(head []byte) FileType {
	if bytes.HasPrefix(head, evtxMagic) {
		return Evtx
	}
	if bytes.HasPrefix(head, regMagic) {
		return Reg
	}

	mtype := mimetype.Detect(head)
	for m := mtype; m != nil; m = m.Parent() {
		switch m.String() {
		case "application/x-xz":
			return Xz
		case "application/gzip", "application/x-gzip":
			return Gzip
		case "application/x-bzip2":
			return Bzip2
		case "application/zip":
			return Zip
		}
	}
	if strings.HasPrefix(mtype.String(), "application/gzip") {
		return Gzip
	}
	return Uncompressed
}
