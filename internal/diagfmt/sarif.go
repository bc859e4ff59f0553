package diagfmt

import (
	"encoding/json"
	"io"
	"slices"

	"tartan/internal/diag"
	"tartan/internal/source"
)

const (
	sarifSchema  = "https://json.schemastore.org/sarif-2.1.0.json"
	sarifVersion = "2.1.0"
)

type sarifLog struct {
	Schema  string     `json:"$schema"`
	Version string     `json:"version"`
	Runs    []sarifRun `json:"runs"`
}

type sarifRun struct {
	Tool        sarifTool         `json:"tool"`
	Invocations []sarifInvocation `json:"invocations,omitempty"`
	Results     []sarifResult     `json:"results"`
}

type sarifTool struct {
	Driver sarifDriver `json:"driver"`
}

type sarifDriver struct {
	Name           string      `json:"name"`
	Version        string      `json:"version,omitempty"`
	InformationURI string      `json:"informationUri,omitempty"`
	Rules          []sarifRule `json:"rules"`
}

type sarifRule struct {
	ID               string       `json:"id"`
	ShortDescription sarifMessage `json:"shortDescription"`
}

type sarifInvocation struct {
	Arguments           []string `json:"arguments,omitempty"`
	ExecutionSuccessful bool     `json:"executionSuccessful"`
}

type sarifMessage struct {
	Text string `json:"text"`
}

type sarifResult struct {
	RuleID           string                 `json:"ruleId"`
	RuleIndex        int                    `json:"ruleIndex"`
	Level            string                 `json:"level"`
	Message          sarifMessage           `json:"message"`
	Locations        []sarifLocation        `json:"locations"`
	RelatedLocations []sarifRelatedLocation `json:"relatedLocations,omitempty"`
	Fixes            []sarifFix             `json:"fixes,omitempty"`
}

type sarifLocation struct {
	PhysicalLocation sarifPhysicalLocation `json:"physicalLocation"`
}

type sarifRelatedLocation struct {
	ID               int                   `json:"id"`
	Message          sarifMessage          `json:"message"`
	PhysicalLocation sarifPhysicalLocation `json:"physicalLocation"`
}

type sarifPhysicalLocation struct {
	ArtifactLocation sarifArtifactLocation `json:"artifactLocation"`
	Region           *sarifRegion          `json:"region,omitempty"`
}

type sarifArtifactLocation struct {
	URI string `json:"uri"`
}

type sarifRegion struct {
	StartLine   uint32 `json:"startLine"`
	StartColumn uint32 `json:"startColumn"`
	EndLine     uint32 `json:"endLine"`
	EndColumn   uint32 `json:"endColumn"`
	ByteOffset  uint32 `json:"byteOffset"`
	ByteLength  uint32 `json:"byteLength"`
}

type sarifFix struct {
	Description     sarifMessage          `json:"description"`
	ArtifactChanges []sarifArtifactChange `json:"artifactChanges"`
}

type sarifArtifactChange struct {
	ArtifactLocation sarifArtifactLocation `json:"artifactLocation"`
	Replacements     []sarifReplacement    `json:"replacements"`
}

type sarifReplacement struct {
	DeletedRegion   sarifRegion           `json:"deletedRegion"`
	InsertedContent *sarifInsertedContent `json:"insertedContent,omitempty"`
}

type sarifInsertedContent struct {
	Text string `json:"text"`
}

func sarifLevel(sev diag.Severity) string {
	switch sev {
	case diag.SevError:
		return "error"
	case diag.SevWarning:
		return "warning"
	default:
		return "note"
	}
}

type sarifBuilder struct {
	mode  PathMode
	rules []sarifRule
	index map[diag.Code]int
}

func (b *sarifBuilder) rule(code diag.Code) int {
	if i, ok := b.index[code]; ok {
		return i
	}
	i := len(b.rules)
	b.rules = append(b.rules, sarifRule{ID: code.ID(), ShortDescription: sarifMessage{Text: code.Title()}})
	b.index[code] = i
	return i
}

func (b *sarifBuilder) location(fs *source.FileSet, span source.Span) (sarifPhysicalLocation, bool) {
	f := fs.Get(span.File)
	if f == nil {
		return sarifPhysicalLocation{}, false
	}
	loc := sarifPhysicalLocation{ArtifactLocation: sarifArtifactLocation{URI: formatPath(f, fs, b.mode)}}
	if len(f.Content) > 0 {
		region := b.region(fs, span)
		loc.Region = &region
	}
	return loc, true
}

func (b *sarifBuilder) region(fs *source.FileSet, span source.Span) sarifRegion {
	start, end := fs.Resolve(span)
	return sarifRegion{
		StartLine:   start.Line,
		StartColumn: start.Col,
		EndLine:     end.Line,
		EndColumn:   end.Col,
		ByteOffset:  span.Start,
		ByteLength:  span.End - span.Start,
	}
}

func (b *sarifBuilder) result(fs *source.FileSet, d *diag.Diagnostic) sarifResult {
	res := sarifResult{
		RuleID:    d.Code.ID(),
		RuleIndex: b.rule(d.Code),
		Level:     sarifLevel(d.Severity),
		Message:   sarifMessage{Text: d.Message},
		Locations: []sarifLocation{},
	}
	if loc, ok := b.location(fs, d.Primary); ok {
		res.Locations = append(res.Locations, sarifLocation{PhysicalLocation: loc})
	}
	for i, n := range d.Notes {
		if loc, ok := b.location(fs, n.Span); ok {
			res.RelatedLocations = append(res.RelatedLocations, sarifRelatedLocation{
				ID: i + 1, Message: sarifMessage{Text: n.Msg}, PhysicalLocation: loc,
			})
		}
	}
	for _, fix := range d.Fixes {
		sf := sarifFix{Description: sarifMessage{Text: fix.Title}}
		for _, edit := range fix.Edits {
			f := fs.Get(edit.Span.File)
			if f == nil {
				continue
			}
			sf.ArtifactChanges = append(sf.ArtifactChanges, sarifArtifactChange{
				ArtifactLocation: sarifArtifactLocation{URI: formatPath(f, fs, b.mode)},
				Replacements: []sarifReplacement{{
					DeletedRegion:   b.region(fs, edit.Span),
					InsertedContent: &sarifInsertedContent{Text: edit.NewText},
				}},
			})
		}
		if len(sf.ArtifactChanges) > 0 {
			res.Fixes = append(res.Fixes, sf)
		}
	}
	return res
}

// Sarif форматирует диагностики одного файла в SARIF (v2.1.0).
func Sarif(w io.Writer, bag *diag.Bag, fs *source.FileSet, meta SarifRunMeta) error {
	return SarifRun(w, []Unit{{Bag: bag, FileSet: fs}}, meta)
}

// SarifRun writes the diagnostics of several files as a single SARIF run.
func SarifRun(w io.Writer, units []Unit, meta SarifRunMeta) error {
	b := &sarifBuilder{mode: meta.PathMode, index: make(map[diag.Code]int)}
	results := []sarifResult{}
	success := true
	for _, u := range units {
		if u.Bag == nil {
			continue
		}
		if u.Bag.HasErrors() {
			success = false
		}
		items := u.Bag.Items()
		for i := range items {
			results = append(results, b.result(u.FileSet, &items[i]))
		}
	}
	if b.rules == nil {
		b.rules = []sarifRule{}
	}
	name := meta.ToolName
	if name == "" {
		name = "tartan"
	}
	run := sarifRun{
		Tool: sarifTool{Driver: sarifDriver{
			Name:           name,
			Version:        meta.ToolVersion,
			InformationURI: meta.InformationURI,
			Rules:          b.rules,
		}},
		Results: results,
	}
	if len(meta.InvocationArgs) > 0 {
		run.Invocations = []sarifInvocation{{
			Arguments:           slices.Clone(meta.InvocationArgs),
			ExecutionSuccessful: success,
		}}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(sarifLog{Schema: sarifSchema, Version: sarifVersion, Runs: []sarifRun{run}})
}
