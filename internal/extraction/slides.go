package extraction

import (
	"archive/zip"
	"encoding/xml"
	"fmt"
	"io"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/daniel/docinsight/internal/types"
)

// slidePathRe matches slide part names inside a .pptx container
var slidePathRe = regexp.MustCompile(`^ppt/slides/slide(\d+)\.xml$`)

// notesPathRe matches presenter-notes part names
var notesPathRe = regexp.MustCompile(`^ppt/notesSlides/notesSlide(\d+)\.xml$`)

// slideContent holds the text pulled from one slide part
type slideContent struct {
	title  string
	body   []string
	tables [][]string // one entry per table; rows joined row-major
}

// extractSlides walks every slide of a .pptx deck in document order and
// collects title, body, table cell text, and presenter notes as labeled
// segments. PowerPoint files are OPC zip containers holding DrawingML parts,
// which encoding/xml handles directly.
func extractSlides(path string) (*types.NormalizedContent, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return nil, &ExtractionError{
			Kind:    KindCorruptFile,
			Path:    path,
			Message: "not a readable pptx container",
			Cause:   err,
		}
	}
	defer func() { _ = zr.Close() }()

	slides := make(map[int]*zip.File)
	notes := make(map[int]*zip.File)
	var order []int
	for _, f := range zr.File {
		if m := slidePathRe.FindStringSubmatch(f.Name); m != nil {
			n, _ := strconv.Atoi(m[1])
			slides[n] = f
			order = append(order, n)
		} else if m := notesPathRe.FindStringSubmatch(f.Name); m != nil {
			n, _ := strconv.Atoi(m[1])
			notes[n] = f
		}
	}
	sort.Ints(order)

	content := &types.NormalizedContent{}
	for _, n := range order {
		sc, err := parseSlidePart(slides[n])
		if err != nil {
			return nil, &ExtractionError{
				Kind:    KindCorruptFile,
				Path:    path,
				Message: fmt.Sprintf("slide %d is not valid DrawingML", n),
				Cause:   err,
			}
		}

		if sc.title != "" {
			content.Segments = append(content.Segments, types.Segment{
				Label: fmt.Sprintf("slide %d title", n),
				Text:  sc.title,
			})
		}
		if len(sc.body) > 0 {
			content.Segments = append(content.Segments, types.Segment{
				Label: fmt.Sprintf("slide %d body", n),
				Text:  strings.Join(sc.body, "\n"),
			})
		}
		for _, rows := range sc.tables {
			content.Segments = append(content.Segments, types.Segment{
				Label: fmt.Sprintf("slide %d table", n),
				Text:  strings.Join(rows, "\n"),
			})
		}
		if nf, ok := notes[n]; ok {
			noteText, err := parseNotesPart(nf)
			if err == nil && noteText != "" {
				content.Segments = append(content.Segments, types.Segment{
					Label: fmt.Sprintf("slide %d notes", n),
					Text:  noteText,
				})
			}
		}
	}

	return content, nil
}

// parseSlidePart token-walks one slide XML part. A full struct mapping of
// DrawingML is not worth carrying; the walker tracks just enough state to
// attribute text runs to title, body, or table cells.
func parseSlidePart(f *zip.File) (*slideContent, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer func() { _ = rc.Close() }()

	sc := &slideContent{}
	dec := xml.NewDecoder(rc)

	var (
		inTitleShape bool
		shapeDepth   int
		tableDepth   int
		cellRuns     []string
		rowCells     []string
		tableRows    []string
		paraRuns     []string
	)

	flushParagraph := func() {
		if len(paraRuns) == 0 {
			return
		}
		line := strings.TrimSpace(strings.Join(paraRuns, ""))
		paraRuns = nil
		if line == "" {
			return
		}
		if inTitleShape && sc.title == "" {
			sc.title = line
		} else if !inTitleShape {
			sc.body = append(sc.body, line)
		}
	}

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "sp":
				shapeDepth++
			case "ph":
				for _, attr := range t.Attr {
					if attr.Name.Local == "type" && (attr.Value == "title" || attr.Value == "ctrTitle") {
						inTitleShape = true
					}
				}
			case "tbl":
				tableDepth++
			case "tr":
				rowCells = nil
			case "tc":
				cellRuns = nil
			case "t":
				var text string
				if err := dec.DecodeElement(&text, &t); err != nil {
					return nil, err
				}
				switch {
				case tableDepth > 0:
					cellRuns = append(cellRuns, text)
				default:
					paraRuns = append(paraRuns, text)
				}
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "p":
				if tableDepth == 0 {
					flushParagraph()
				}
			case "tc":
				rowCells = append(rowCells, strings.TrimSpace(strings.Join(cellRuns, "")))
			case "tr":
				tableRows = append(tableRows, strings.Join(rowCells, " | "))
			case "tbl":
				tableDepth--
				if tableDepth == 0 && len(tableRows) > 0 {
					sc.tables = append(sc.tables, tableRows)
					tableRows = nil
				}
			case "sp":
				shapeDepth--
				if shapeDepth == 0 {
					flushParagraph()
					inTitleShape = false
				}
			}
		}
	}
	flushParagraph()

	return sc, nil
}

// parseNotesPart collects all text runs from a presenter-notes part
func parseNotesPart(f *zip.File) (string, error) {
	rc, err := f.Open()
	if err != nil {
		return "", err
	}
	defer func() { _ = rc.Close() }()

	dec := xml.NewDecoder(rc)
	var runs []string
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", err
		}
		if t, ok := tok.(xml.StartElement); ok && t.Name.Local == "t" {
			var text string
			if err := dec.DecodeElement(&text, &t); err != nil {
				return "", err
			}
			runs = append(runs, text)
		}
	}

	// Notes masters embed the slide number as a lone digit run; joining with
	// spaces keeps the note readable without trying to filter those out.
	return strings.TrimSpace(strings.Join(runs, " ")), nil
}
