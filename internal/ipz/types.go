package ipz

// Layout constants for IPZ format VPD. All multi-byte integer fields in the
// image are little endian.
const (
	recordNameLen = 4
	kwNameLen     = 2
	recordMin     = 44

	// The VHDR record sits at a fixed position. Its ECC occupies the first
	// eleven bytes of the image.
	vhdrECCOffset    = 0
	vhdrECCLen       = 11
	vhdrRecordOffset = 11
	vhdrRecordLen    = 44

	// A record opens with a large-resource tag byte, a 16-bit record
	// length, and the RT keyword whose 4-byte payload is the record name.
	recordHeaderSkip = 6
	vhdrNameOffset   = vhdrRecordOffset + recordHeaderSkip

	// Offsets of the VTOC entry fields inside VHDR's PT keyword.
	vhdrTocEntryOffset = 29
	vtocPtrOffset      = 35
	vtocRecLenOffset   = 37
	vtocECCOffOffset   = 39
	vtocECCLenOffset   = 41

	// A PT entry: record name, record type, record offset, record length,
	// ECC offset, ECC length.
	ptEntrySize = 14

	headerRecordName = "VHDR"
	tocRecordName    = "VTOC"
	tocKeywordName   = "PT"
	lastKeywordName  = "PF"
	poundKwPrefix    = '#'

	macLenBytes  = 6
	mbLenBytes   = 8
	uuidLenBytes = 16
)

// Encoding selects the scheme used to turn a keyword's raw bytes into its
// string representation.
type Encoding uint8

const (
	// EncodingASCII copies the payload through unchanged. It is the
	// default for any (record, keyword) pair absent from the platform
	// table.
	EncodingASCII Encoding = iota
	// EncodingRaw renders the payload as lowercase hexadecimal.
	EncodingRaw
	// EncodingB1 renders the first six payload bytes as a colon-separated
	// MAC address.
	EncodingB1
	// EncodingMB renders the packed build date as
	// "YYYY-MM-DD-HH:MM:SS".
	EncodingMB
	// EncodingUD renders a 16-byte UUID in canonical hyphenated form.
	EncodingUD
)

func (e Encoding) String() string {
	switch e {
	case EncodingASCII:
		return "ascii"
	case EncodingRaw:
		return "raw"
	case EncodingB1:
		return "b1"
	case EncodingMB:
		return "mb"
	case EncodingUD:
		return "ud"
	default:
		return "unknown"
	}
}

// RecordDescriptor is one entry of the table of contents: where a record
// lives in the image and where its ECC bytes are. Produced only by the TOC
// reader.
type RecordDescriptor struct {
	Name      string
	Type      uint16
	Offset    uint16
	Length    uint16
	ECCOffset uint16
	ECCLength uint16
}

// PlatformConfig supplies the platform-owned parse inputs: which records to
// keep, how each keyword decodes, and which records carry their own ECC.
type PlatformConfig interface {
	SupportsRecord(name string) bool
	EncodingFor(record, keyword string) Encoding
	RecordHasECC(name string) bool
}

// Policy decides what a failure inside a single record or keyword does to
// the rest of the parse.
type Policy uint8

const (
	// PolicyAbort stops the parse at the first record or keyword failure.
	PolicyAbort Policy = iota
	// PolicyBestEffort skips the failing record or keyword, records a
	// Problem, and continues.
	PolicyBestEffort
)

// Problem describes a record or keyword that was skipped under
// PolicyBestEffort.
type Problem struct {
	Record  string `json:"record"`
	Keyword string `json:"keyword,omitempty"`
	Offset  int    `json:"offset"`
	Message string `json:"message"`
}
