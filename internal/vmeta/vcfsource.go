package vmeta

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/biogo/hts/bgzf"
	"github.com/biogo/hts/csi"
	"github.com/biogt/bgt/gtpb"
	"github.com/biogt/bgt/internal/errs"
	"github.com/brentp/vcfgo"
	"github.com/pkg/errors"
)

// rowInfoKey is the info field name holding the genotype-matrix row-id.
const rowInfoKey = "_row"

// VCFSource is the real SiteSource adapter: a block-gzipped VCF-shaped
// variant stream random-accessed through a coordinate-sorted index.
// The header text is captured once at open; after an index seek the
// record parser is rebuilt from that text plus the seeked stream, so
// no stale buffered bytes survive the jump.
type VCFSource struct {
	file       *os.File
	f          *bgzf.Reader
	idx        *csi.Index
	vr         *vcfgo.Reader
	header     *Header
	headerText []byte
	prefix     string

	region    *gtpb.Region // active QueryRegion restriction, nil if none
	exhausted bool
	pending   *Site // one-record lookahead buffer, consumed by Next
}

// OpenVCFSource opens the block-compressed variant stream at path and
// its coordinate index at indexPath.
func OpenVCFSource(path, indexPath string) (*VCFSource, error) {
	raw, err := os.Open(path)
	if err != nil {
		return nil, &errs.StoreOpenError{Prefix: path, Cause: err}
	}
	bgz, err := bgzf.NewReader(raw, 1)
	if err != nil {
		raw.Close()
		return nil, &errs.StoreOpenError{Prefix: path, Cause: err}
	}
	idxFile, err := os.Open(indexPath)
	if err != nil {
		bgz.Close()
		raw.Close()
		return nil, &errs.StoreOpenError{Prefix: indexPath, Cause: err}
	}
	// The .csi container is BGZF; csi.ReadFrom wants the decompressed
	// stream.
	idxBgz, err := bgzf.NewReader(idxFile, 1)
	if err != nil {
		idxFile.Close()
		bgz.Close()
		raw.Close()
		return nil, &errs.FormatError{Prefix: indexPath, Reason: err.Error()}
	}
	idx, err := csi.ReadFrom(idxBgz)
	idxBgz.Close()
	idxFile.Close()
	if err != nil {
		bgz.Close()
		raw.Close()
		return nil, &errs.FormatError{Prefix: indexPath, Reason: err.Error()}
	}

	br := bufio.NewReader(bgz)
	headerText, err := readHeaderText(br)
	if err != nil {
		bgz.Close()
		raw.Close()
		return nil, &errs.FormatError{Prefix: path, Reason: err.Error()}
	}
	vr, err := vcfgo.NewReader(io.MultiReader(bytes.NewReader(headerText), br), false)
	if err != nil {
		bgz.Close()
		raw.Close()
		return nil, &errs.FormatError{Prefix: path, Reason: err.Error()}
	}

	contigs := contigsFromHeaderText(headerText)
	info := make([]string, 0, len(vr.Header.Infos))
	for key := range vr.Header.Infos {
		info = append(info, key)
	}
	sort.Strings(info)
	format := make([]string, 0, len(vr.Header.SampleFormats))
	for key := range vr.Header.SampleFormats {
		format = append(format, key)
	}
	sort.Strings(format)

	return &VCFSource{
		file:       raw,
		f:          bgz,
		idx:        idx,
		vr:         vr,
		header:     NewHeader(contigs, info, format),
		headerText: headerText,
		prefix:     path,
	}, nil
}

// readHeaderText consumes the "##"/"#CHROM" header lines from br and
// returns them verbatim, leaving br positioned at the first record.
func readHeaderText(br *bufio.Reader) ([]byte, error) {
	var buf bytes.Buffer
	for {
		peek, err := br.Peek(1)
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		if peek[0] != '#' {
			break
		}
		line, err := br.ReadBytes('\n')
		buf.Write(line)
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		if bytes.HasPrefix(line, []byte("#CHROM")) {
			break
		}
	}
	if buf.Len() == 0 {
		return nil, errors.New("missing header")
	}
	return buf.Bytes(), nil
}

// contigsFromHeaderText extracts contig names from the ##contig lines
// in header-declaration order. Header order is the contig dictionary:
// RefID i is the i'th declared contig.
func contigsFromHeaderText(headerText []byte) []string {
	var contigs []string
	for _, line := range bytes.Split(headerText, []byte("\n")) {
		const prefix = "##contig=<"
		if !bytes.HasPrefix(line, []byte(prefix)) {
			continue
		}
		body := strings.TrimSuffix(string(line[len(prefix):]), ">")
		for _, kv := range strings.Split(body, ",") {
			if strings.HasPrefix(kv, "ID=") {
				contigs = append(contigs, kv[len("ID="):])
				break
			}
		}
	}
	return contigs
}

// Header implements SiteSource.
func (s *VCFSource) Header() *Header { return s.header }

func (s *VCFSource) decode(v *vcfgo.Variant) (*Site, error) {
	refID, ok := s.header.ContigID(v.Chromosome)
	if !ok {
		return nil, &errs.FormatError{Prefix: s.prefix, Reason: fmt.Sprintf("unknown contig %q", v.Chromosome)}
	}
	alleles := append([]string{v.Ref()}, v.Alt()...)
	info := map[string]string{}
	raw, err := v.Info().Get(rowInfoKey)
	if err != nil {
		return nil, &errs.FormatError{Prefix: s.prefix, Reason: "site missing required _row info field"}
	}
	row, ok := toInt64(raw)
	if !ok {
		return nil, &errs.FormatError{Prefix: s.prefix, Reason: "_row info field is not an integer"}
	}
	if cig, err := v.Info().Get("CIGAR"); err == nil {
		if cs, ok := cig.(string); ok {
			info["CIGAR"] = cs
		}
	}
	return &Site{
		RefID:   refID,
		Pos:     int32(v.Pos) - 1,
		RLen:    int32(len(v.Ref())),
		Alleles: alleles,
		Info:    info,
		Row:     row,
	}, nil
}

func toInt64(v interface{}) (int64, bool) {
	switch x := v.(type) {
	case int:
		return int64(x), true
	case int64:
		return x, true
	case string:
		n, err := strconv.ParseInt(strings.TrimSpace(x), 10, 64)
		return n, err == nil
	default:
		return 0, false
	}
}

// Next implements SiteSource. With an active region it skips sites
// before the region start and ends the stream at the first site at or
// past the region limit.
func (s *VCFSource) Next() (*Site, error) {
	for {
		site, err := s.next1()
		if site == nil || err != nil {
			return site, err
		}
		if s.region == nil {
			return site, nil
		}
		switch {
		case site.RefID < s.region.Start.RefID:
			continue
		case site.RefID > s.region.Start.RefID:
			s.exhausted = true
			return nil, nil
		case site.Pos >= s.region.Limit.Pos:
			s.exhausted = true
			return nil, nil
		case site.Pos+site.RLen <= s.region.Start.Pos:
			continue
		default:
			return site, nil
		}
	}
}

func (s *VCFSource) next1() (*Site, error) {
	if s.exhausted {
		return nil, nil
	}
	if s.pending != nil {
		site := s.pending
		s.pending = nil
		return site, nil
	}
	v := s.vr.Read()
	if v == nil {
		if s.vr.Error() != nil && s.vr.Error() != io.EOF {
			return nil, errors.Wrapf(s.vr.Error(), "vmeta: reading %s", s.prefix)
		}
		return nil, nil
	}
	return s.decode(v)
}

// SeekRow implements SiteSource. The CSI index is built over genomic
// coordinates, not row-ids, so a row-id seek rewinds to the start of
// the stream and scans forward; callers needing fast region-start
// reads should use QueryRegion instead. The first record at or after
// row is buffered in pending and handed back by the next Next() call.
func (s *VCFSource) SeekRow(row int64) error {
	s.region = nil
	s.exhausted = false
	s.pending = nil
	if err := s.f.Seek(bgzf.Offset{}); err != nil {
		return errors.Wrapf(err, "vmeta: rewinding %s", s.prefix)
	}
	vr, err := vcfgo.NewReader(bufio.NewReader(s.f), false)
	if err != nil {
		return &errs.FormatError{Prefix: s.prefix, Reason: err.Error()}
	}
	s.vr = vr
	for {
		site, err := s.next1()
		if err != nil {
			return err
		}
		if site == nil {
			return nil
		}
		if site.Row >= row {
			s.pending = site
			return nil
		}
	}
}

// QueryRegion implements SiteSource using the coordinate index to jump
// to the first overlapping bgzf chunk, then filtering in Next. The
// record parser is rebuilt over the seeked stream; the header captured
// at open is replayed in front of it so the parse state is identical
// to a fresh open.
func (s *VCFSource) QueryRegion(region gtpb.Region) error {
	s.pending = nil
	s.exhausted = false
	r := region
	s.region = &r
	chunks := s.idx.Chunks(int(region.Start.RefID), int(region.Start.Pos), int(region.Limit.Pos))
	if len(chunks) == 0 {
		s.exhausted = true
		return nil
	}
	if err := s.f.Seek(chunks[0].Begin); err != nil {
		return errors.Wrapf(err, "vmeta: seeking %s to indexed chunk", s.prefix)
	}
	vr, err := vcfgo.NewReader(io.MultiReader(bytes.NewReader(s.headerText), bufio.NewReader(s.f)), false)
	if err != nil {
		return &errs.FormatError{Prefix: s.prefix, Reason: err.Error()}
	}
	s.vr = vr
	return nil
}

// Close implements SiteSource.
func (s *VCFSource) Close() error {
	if err := s.f.Close(); err != nil {
		s.file.Close()
		return err
	}
	return s.file.Close()
}
