// Package textenc decodes outline and template files to UTF-8. Report
// authors frequently hand in GBK or Big5 text exported from office suites.
package textenc

import (
	"bytes"
	"io"
	"io/fs"
	"os"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/simplifiedchinese"
	"golang.org/x/text/encoding/traditionalchinese"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

type Result struct {
	Encoding   string  `json:"encoding"`
	Confidence float64 `json:"confidence"`
	HasBOM     bool    `json:"has_bom"`
}

const maxSampleSize = 8192

var (
	bomUTF8    = []byte{0xEF, 0xBB, 0xBF}
	bomUTF16LE = []byte{0xFF, 0xFE}
	bomUTF16BE = []byte{0xFE, 0xFF}
)

// Detect guesses the encoding of data. BOMs win outright, valid UTF-8 is
// trusted next, and otherwise GB18030 and Big5 are scored by how many
// well-formed double-byte pairs they would decode.
func Detect(data []byte) Result {
	switch {
	case len(data) == 0:
		return Result{Encoding: "utf-8", Confidence: 1.0}
	case bytes.HasPrefix(data, bomUTF8):
		return Result{Encoding: "utf-8", Confidence: 1.0, HasBOM: true}
	case bytes.HasPrefix(data, bomUTF16LE):
		return Result{Encoding: "utf-16le", Confidence: 1.0, HasBOM: true}
	case bytes.HasPrefix(data, bomUTF16BE):
		return Result{Encoding: "utf-16be", Confidence: 1.0, HasBOM: true}
	}

	sample := data
	if len(sample) > maxSampleSize {
		sample = trimToRuneBoundary(sample[:maxSampleSize])
	}

	if utf8.Valid(sample) {
		return Result{Encoding: "utf-8", Confidence: 0.95}
	}

	gb := scoreGB18030(sample)
	big5 := scoreBig5(sample)
	if gb == 0 && big5 == 0 {
		return Result{Encoding: "utf-8", Confidence: 0.3}
	}
	// Every Big5 pair is also a well-formed GB18030 pair, so a tie goes to
	// Big5 when the text uses its 0x40-0x7E trail bytes, which simplified
	// text in GB2312 never does.
	if big5 > gb || (big5 == gb && hasLowTrail(sample)) {
		return Result{Encoding: "big5", Confidence: big5}
	}
	return Result{Encoding: "gb18030", Confidence: gb}
}

// Decode converts data to a UTF-8 string using the detected encoding.
// Undecodable bytes become U+FFFD rather than failing the read.
func Decode(data []byte) (string, Result) {
	detected := Detect(data)
	return DecodeAs(data, detected), detected
}

func DecodeAs(data []byte, detected Result) string {
	if detected.HasBOM {
		switch detected.Encoding {
		case "utf-8":
			data = bytes.TrimPrefix(data, bomUTF8)
		case "utf-16le":
			data = bytes.TrimPrefix(data, bomUTF16LE)
		case "utf-16be":
			data = bytes.TrimPrefix(data, bomUTF16BE)
		}
	}

	switch detected.Encoding {
	case "utf-16le":
		return decodeWith(data, unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM).NewDecoder())
	case "utf-16be":
		return decodeWith(data, unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM).NewDecoder())
	case "gb18030":
		return decodeWith(data, simplifiedchinese.GB18030.NewDecoder())
	case "big5":
		return decodeWith(data, traditionalchinese.Big5.NewDecoder())
	default:
		return string(bytes.ToValidUTF8(data, []byte("\uFFFD")))
	}
}

// ReadFile reads path from the OS filesystem and decodes it.
func ReadFile(path string) (string, Result, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", Result{}, err
	}
	content, detected := Decode(data)
	return content, detected, nil
}

// ReadFS reads name from fsys and decodes it.
func ReadFS(fsys fs.FS, name string) (string, Result, error) {
	data, err := fs.ReadFile(fsys, name)
	if err != nil {
		return "", Result{}, err
	}
	content, detected := Decode(data)
	return content, detected, nil
}

func decodeWith(data []byte, decoder *encoding.Decoder) string {
	if len(data) == 0 {
		return ""
	}
	out, err := io.ReadAll(transform.NewReader(bytes.NewReader(data), decoder))
	if err != nil {
		return string(bytes.ToValidUTF8(data, []byte("\uFFFD")))
	}
	return string(bytes.ToValidUTF8(out, []byte("\uFFFD")))
}

func trimToRuneBoundary(b []byte) []byte {
	for i := 0; i < utf8.UTFMax && len(b) > 0; i++ {
		if utf8.Valid(b) {
			return b
		}
		b = b[:len(b)-1]
	}
	return b
}

func scoreGB18030(data []byte) float64 {
	pairs, bad := 0, 0
	for i := 0; i < len(data); i++ {
		b := data[i]
		if b < 0x80 {
			continue
		}
		if b < 0x81 || b > 0xFE || i+1 >= len(data) {
			bad++
			continue
		}
		trail := data[i+1]
		switch {
		case trail >= 0x30 && trail <= 0x39 && i+3 < len(data):
			pairs++
			i += 3
		case (trail >= 0x40 && trail <= 0x7E) || (trail >= 0x80 && trail <= 0xFE):
			pairs++
			i++
		default:
			bad++
		}
	}
	return ratio(pairs, bad)
}

func scoreBig5(data []byte) float64 {
	pairs, bad := 0, 0
	for i := 0; i < len(data); i++ {
		b := data[i]
		if b < 0x80 {
			continue
		}
		if b < 0xA1 || b > 0xF9 || i+1 >= len(data) {
			bad++
			continue
		}
		trail := data[i+1]
		if (trail >= 0x40 && trail <= 0x7E) || (trail >= 0xA1 && trail <= 0xFE) {
			pairs++
			i++
			continue
		}
		bad++
	}
	return ratio(pairs, bad)
}

func hasLowTrail(data []byte) bool {
	for i := 0; i+1 < len(data); i++ {
		if data[i] < 0x80 {
			continue
		}
		if trail := data[i+1]; trail >= 0x40 && trail <= 0x7E {
			return true
		}
		i++
	}
	return false
}

func ratio(good, bad int) float64 {
	if good == 0 {
		return 0
	}
	return float64(good) / float64(good+bad)
}
