// Package ipz parses IPZ format VPD (Vital Product Data), the
// self-describing binary blob OpenPower systems store in hardware EEPROMs.
//
// The algorithm:
//  1. Validate that the first record is VHDR, the header record, and check
//     its ECC.
//  2. From VHDR, get the offset of the VTOC record, the table of contents,
//     and check its ECC.
//  3. Walk VTOC's PT keyword, noting offset and length of every supported
//     record.
//  4. For each noted record: jump to its offset, confirm the name matches,
//     optionally check its ECC, then read every contained keyword and
//     decode it per the platform's encoding table.
//
// All offsets come out of the image itself, so every jump and read is
// bounds checked before it is trusted.
package ipz

import (
	"errors"
	"fmt"

	"github.com/shenki/openpower-vpd-parser/internal/common"
	"github.com/shenki/openpower-vpd-parser/internal/inventory"
)

// Options configures a Parser beyond its required inputs.
type Options struct {
	// Policy selects abort (default) or best-effort handling of
	// single-record and single-keyword failures. Header and TOC failures
	// always abort; without a valid TOC there is nothing to recover.
	Policy Policy
	// Checker verifies ECC-protected regions. Defaults to DefaultChecker.
	Checker IntegrityChecker
	// SkipRecordECC disables the per-record ECC pass. Header and TOC ECC
	// are always checked.
	SkipRecordECC bool
	// Metrics, when non-nil, receives progress counters.
	Metrics *common.Metrics
}

// Parser walks one VPD image and produces an inventory.Store. A Parser is
// single use and not safe for concurrent use; the parse itself is a linear
// pipeline over one buffer.
type Parser struct {
	vpd           Buffer
	inventoryPath string
	vpdFilePath   string
	cfg           PlatformConfig
	opts          Options
	problems      []Problem
	out           *inventory.Store
}

// NewParser borrows vpd for the duration of one Run. inventoryPath is used
// only for diagnostic attribution and vpdFilePath only to label the output
// store; neither is read.
func NewParser(vpd []byte, inventoryPath, vpdFilePath string, cfg PlatformConfig, opts Options) *Parser {
	if opts.Checker == nil {
		opts.Checker = DefaultChecker{}
	}
	return &Parser{
		vpd:           Buffer(vpd),
		inventoryPath: inventoryPath,
		vpdFilePath:   vpdFilePath,
		cfg:           cfg,
		opts:          opts,
	}
}

// Problems lists the records and keywords skipped under PolicyBestEffort
// during the last Run.
func (p *Parser) Problems() []Problem {
	out := make([]Problem, len(p.problems))
	copy(out, p.problems)
	return out
}

// Run parses the image. The returned store's records are exactly the
// supported records listed in the TOC, in TOC order. Ownership of the store
// passes to the caller.
func (p *Parser) Run() (*inventory.Store, error) {
	if p.opts.Metrics != nil {
		p.opts.Metrics.Start()
		p.opts.Metrics.SetTotalBytes(int64(len(p.vpd)))
		defer p.opts.Metrics.Stop()
	}
	p.out = inventory.New(p.inventoryPath, p.vpdFilePath)
	p.problems = nil

	if err := p.CheckHeader(); err != nil {
		return nil, err
	}
	descriptors, err := p.readTOC()
	if err != nil {
		return nil, err
	}
	for _, desc := range descriptors {
		if err := p.processRecord(desc); err != nil {
			if p.opts.Policy == PolicyBestEffort {
				p.addProblem(desc.Name, "", int(desc.Offset), err)
				continue
			}
			return nil, err
		}
	}
	return p.out, nil
}

// CheckHeader confirms the image opens with the VHDR record and that
// VHDR's ECC-protected region is intact.
func (p *Parser) CheckHeader() error {
	if len(p.vpd) < recordMin {
		return parseErr(ErrMalformedHeader, "", "", 0,
			fmt.Sprintf("image is %d bytes, below the %d byte minimum", len(p.vpd), recordMin))
	}
	name, err := p.recordNameAt(vhdrRecordOffset)
	if err != nil {
		return err
	}
	if name != headerRecordName {
		return parseErr(ErrMalformedHeader, name, "", vhdrNameOffset,
			"VHDR record not found")
	}
	return p.checkRegion(headerRecordName, vhdrRecordOffset, vhdrRecordLen, vhdrECCOffset, vhdrECCLen)
}

// recordNameAt reads the 4-character record name stored behind the
// large-resource tag and RT keyword at recordOffset.
func (p *Parser) recordNameAt(recordOffset int) (string, error) {
	cur, err := p.vpd.Cursor(recordOffset + recordHeaderSkip)
	if err != nil {
		return "", err
	}
	return cur.String(recordNameLen)
}

// checkRegion runs the integrity checker over one ECC-protected byte run.
func (p *Parser) checkRegion(record string, offset, length, eccOffset, eccLength int) error {
	data, err := p.vpd.region(offset, length)
	if err != nil {
		return err
	}
	ecc, err := p.vpd.region(eccOffset, eccLength)
	if err != nil {
		return err
	}
	if err := p.opts.Checker.Check(data, ecc); err != nil {
		if p.opts.Metrics != nil {
			p.opts.Metrics.IncECCFailure()
		}
		return parseErr(ErrCorruptedData, record, "", offset, err.Error())
	}
	return nil
}

// readTOC locates the VTOC record via VHDR's reserved TOC entry, checks
// its ECC, and walks its PT keyword into an ordered descriptor list
// filtered to the platform's supported records.
func (p *Parser) readTOC() ([]RecordDescriptor, error) {
	hdr, err := p.vpd.Cursor(vtocPtrOffset)
	if err != nil {
		return nil, err
	}
	vtocOffset, err := hdr.Uint16()
	if err != nil {
		return nil, err
	}
	vtocLen, err := hdr.Uint16()
	if err != nil {
		return nil, err
	}
	vtocECCOff, err := hdr.Uint16()
	if err != nil {
		return nil, err
	}
	vtocECCLen, err := hdr.Uint16()
	if err != nil {
		return nil, err
	}
	if err := p.checkRegion(tocRecordName, int(vtocOffset), int(vtocLen), int(vtocECCOff), int(vtocECCLen)); err != nil {
		return nil, err
	}

	name, err := p.recordNameAt(int(vtocOffset))
	if err != nil {
		return nil, err
	}
	if name != tocRecordName {
		return nil, parseErr(ErrMalformedTOC, name, "", int(vtocOffset),
			"VTOC record not found at header-declared offset")
	}

	// The PT keyword follows the record name directly.
	cur, err := p.vpd.Cursor(int(vtocOffset) + recordHeaderSkip + recordNameLen)
	if err != nil {
		return nil, err
	}
	kwName, err := cur.String(kwNameLen)
	if err != nil {
		return nil, err
	}
	if kwName != tocKeywordName {
		return nil, parseErr(ErrMalformedTOC, tocRecordName, kwName, cur.Pos()-kwNameLen,
			"descriptor keyword PT not found")
	}
	ptLen, err := cur.Byte()
	if err != nil {
		return nil, err
	}
	return p.readPT(cur, int(ptLen))
}

// readPT decodes the flat PT entry array into record descriptors, in entry
// order. Unsupported records are discarded; out-of-range offsets are
// corruption, not truncation.
func (p *Parser) readPT(cur *Cursor, ptLen int) ([]RecordDescriptor, error) {
	if ptLen%ptEntrySize != 0 {
		return nil, parseErr(ErrMalformedTOC, tocRecordName, tocKeywordName, cur.Pos(),
			fmt.Sprintf("PT length %d is not a multiple of the %d byte entry size", ptLen, ptEntrySize))
	}
	var descriptors []RecordDescriptor
	seen := make(map[string]bool)
	for consumed := 0; consumed < ptLen; consumed += ptEntrySize {
		entryPos := cur.Pos()
		var desc RecordDescriptor
		var err error
		if desc.Name, err = cur.String(recordNameLen); err != nil {
			return nil, err
		}
		if desc.Type, err = cur.Uint16(); err != nil {
			return nil, err
		}
		if desc.Offset, err = cur.Uint16(); err != nil {
			return nil, err
		}
		if desc.Length, err = cur.Uint16(); err != nil {
			return nil, err
		}
		if desc.ECCOffset, err = cur.Uint16(); err != nil {
			return nil, err
		}
		if desc.ECCLength, err = cur.Uint16(); err != nil {
			return nil, err
		}
		if !p.cfg.SupportsRecord(desc.Name) {
			continue
		}
		if seen[desc.Name] {
			return nil, parseErr(ErrMalformedTOC, desc.Name, "", entryPos,
				"record listed twice in table of contents")
		}
		seen[desc.Name] = true
		if int(desc.Offset) < vhdrRecordOffset+vhdrRecordLen {
			return nil, parseErr(ErrMalformedTOC, desc.Name, "", entryPos,
				"record offset overlaps the header")
		}
		if int(desc.Offset)+int(desc.Length) > len(p.vpd) {
			return nil, parseErr(ErrOutOfBounds, desc.Name, "", int(desc.Offset),
				"record extends beyond the image")
		}
		if desc.ECCLength > 0 && int(desc.ECCOffset)+int(desc.ECCLength) > len(p.vpd) {
			return nil, parseErr(ErrOutOfBounds, desc.Name, "", int(desc.ECCOffset),
				"record ecc extends beyond the image")
		}
		descriptors = append(descriptors, desc)
	}
	return descriptors, nil
}

// processRecord confirms the record at the descriptor's offset is the one
// the TOC promised, optionally checks its ECC, and reads its keywords into
// the output store.
func (p *Parser) processRecord(desc RecordDescriptor) error {
	name, err := p.recordNameAt(int(desc.Offset))
	if err != nil {
		return err
	}
	if name != desc.Name {
		return parseErr(ErrRecordMismatch, desc.Name, "", int(desc.Offset),
			fmt.Sprintf("found %q", name))
	}
	if !p.opts.SkipRecordECC && desc.ECCLength > 0 && p.cfg.RecordHasECC(desc.Name) {
		if err := p.checkRegion(desc.Name, int(desc.Offset), int(desc.Length), int(desc.ECCOffset), int(desc.ECCLength)); err != nil {
			return err
		}
	}

	kwStart := int(desc.Offset) + recordHeaderSkip + recordNameLen
	extent := int(desc.Offset) + int(desc.Length) - kwStart
	if extent < 0 {
		return parseErr(ErrMalformedTOC, desc.Name, "", int(desc.Offset),
			"record length smaller than its header")
	}
	cur, err := p.vpd.CursorRange(kwStart, extent)
	if err != nil {
		return err
	}
	p.out.AddRecord(desc.Name)
	if p.opts.Metrics != nil {
		p.opts.Metrics.AddRecord(int64(desc.Length))
	}
	return p.readKeywords(desc.Name, cur)
}

// readKeywords consumes a record's keyword section: 2-character name, a
// length byte (16-bit little endian for #-prefixed keywords), then the
// payload, until the PF terminator or the record's extent is exhausted.
func (p *Parser) readKeywords(record string, cur *Cursor) error {
	for cur.Remaining() >= kwNameLen {
		kwPos := cur.Pos()
		kw, err := cur.String(kwNameLen)
		if err != nil {
			return err
		}
		if kw == lastKeywordName {
			break
		}
		var length int
		if kw[0] == poundKwPrefix {
			wide, err := cur.Uint16()
			if err != nil {
				return err
			}
			length = int(wide)
		} else {
			narrow, err := cur.Byte()
			if err != nil {
				return err
			}
			length = int(narrow)
		}
		data, err := cur.Bytes(length)
		if err != nil {
			return err
		}
		value, err := decodeKeyword(p.cfg.EncodingFor(record, kw), data)
		if err != nil {
			derr := parseErr(ErrDecode, record, kw, kwPos, err.Error())
			if p.opts.Policy == PolicyBestEffort {
				// Best-effort parses substitute an empty value so the
				// keyword's presence is still visible to consumers.
				p.addProblem(record, kw, kwPos, derr)
				value = ""
			} else {
				return derr
			}
		}
		p.out.AddKeyword(record, kw, value)
		if p.opts.Metrics != nil {
			p.opts.Metrics.AddKeyword()
		}
	}
	return nil
}

func (p *Parser) addProblem(record, keyword string, offset int, err error) {
	msg := err.Error()
	var perr *ParseError
	if errors.As(err, &perr) && perr.Detail != "" {
		msg = perr.Detail + ": " + perr.Kind.Error()
	}
	p.problems = append(p.problems, Problem{
		Record:  record,
		Keyword: keyword,
		Offset:  offset,
		Message: msg,
	})
	common.Logf("skipping %s/%s at offset %d: %v", record, keyword, offset, err)
}
