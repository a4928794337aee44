// Package plan synthesizes retention-plan documents and validates the
// payloads returned by the generative plan service.
package plan

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/okian/reten/internal/domain/model"
)

// Threshold is the minimum score that warrants a retention plan.
const Threshold = 60

// raiseThreshold gates the market-alignment recommendation inside the
// Compensation Adjustments section.
const raiseThreshold = 60

// Synthesize builds the offline retention plan for p. It returns false when
// the score does not warrant a plan. The document carries a trailing note
// disclosing that it was produced by the fallback path.
func Synthesize(p model.Profile, score int, level model.RiskLevel) (string, bool) {
	if score < Threshold {
		return "", false
	}

	var b strings.Builder

	b.WriteString("### Strategic Overview\n\n")
	fmt.Fprintf(&b, "The profile analysis of %s indicates a %s risk of departure. "+
		"This assessment weighs tenure, performance trajectory and compensation positioning.\n\n",
		p.Name, levelPhrase(level))

	b.WriteString("### Immediate Actions\n\n")
	b.WriteString("- Schedule a one-on-one conversation within the next two weeks\n")
	b.WriteString("- Review current workload and identify friction points\n")
	b.WriteString("- Reassess performance objectives against expectations\n")
	b.WriteString("- Surface near-term development opportunities\n\n")

	b.WriteString("### Long-Term Development\n\n")
	b.WriteString("- Establish a 12-24 month career path\n")
	b.WriteString("- Offer targeted training aligned with stated aspirations\n")
	b.WriteString("- Create mentorship opportunities\n")
	b.WriteString("- Strengthen engagement through ownership of visible projects\n\n")

	b.WriteString("### Compensation Adjustments\n\n")
	if score > raiseThreshold {
		b.WriteString("- Salary review recommended to align with market\n")
		b.WriteString("- Consider additional benefits such as remote work or schedule flexibility\n\n")
	} else {
		b.WriteString("- Compensation appears aligned with market\n")
		b.WriteString("- Maintain the annual review cadence\n\n")
	}

	b.WriteString("### Recognition Strategy\n\n")
	b.WriteString("- Put a regular feedback loop in place\n")
	b.WriteString("- Publicly acknowledge significant contributions\n")
	b.WriteString("- Create visibility opportunities within the organization\n\n")

	b.WriteString(OfflineNote)

	return b.String(), true
}

// OfflineNote is appended to every fallback plan so consumers can tell
// heuristic plans from authoritative ones.
const OfflineNote = "**Note**: This plan was generated in offline mode. " +
	"Reconnect the prediction service for a deeper analysis."

func levelPhrase(level model.RiskLevel) string {
	switch level {
	case model.LevelHigh:
		return "high"
	case model.LevelMedium:
		return "moderate"
	default:
		return "low"
	}
}

// Payload is the JSON object the generative plan service must return.
type Payload struct {
	RiskScore     float64         `json:"riskScore"`
	RiskLevel     model.RiskLevel `json:"riskLevel"`
	RetentionPlan string          `json:"retentionPlan"`
}

// ParsePayload extracts and validates the payload from raw generative
// output. Code-fence wrapping is stripped before parsing. Any missing
// field, non-numeric score or unknown level is a validation failure.
func ParsePayload(text string) (Payload, error) {
	cleaned := strings.TrimSpace(text)
	cleaned = strings.ReplaceAll(cleaned, "```json", "")
	cleaned = strings.ReplaceAll(cleaned, "```", "")
	cleaned = strings.TrimSpace(cleaned)

	var raw map[string]json.RawMessage
	if err := json.Unmarshal([]byte(cleaned), &raw); err != nil {
		return Payload{}, fmt.Errorf("plan payload is not a JSON object: %w", err)
	}
	for _, field := range []string{"riskScore", "riskLevel", "retentionPlan"} {
		if _, ok := raw[field]; !ok {
			return Payload{}, fmt.Errorf("plan payload missing field %q", field)
		}
	}

	var p Payload
	if err := json.Unmarshal([]byte(cleaned), &p); err != nil {
		return Payload{}, fmt.Errorf("plan payload has wrong field types: %w", err)
	}
	if !p.RiskLevel.Valid() {
		return Payload{}, fmt.Errorf("plan payload carries unknown risk level %q", p.RiskLevel)
	}
	if p.RiskScore < 0 || p.RiskScore > model.MaxRiskScore {
		return Payload{}, fmt.Errorf("plan payload score %v outside [0,100]", p.RiskScore)
	}
	if p.RetentionPlan == "" {
		return Payload{}, fmt.Errorf("plan payload carries an empty plan")
	}
	return p, nil
}

// BlockKind tells downstream renderers how to treat a document block.
type BlockKind int

// Block kinds, per the section delimiting convention.
const (
	BlockParagraph BlockKind = iota
	BlockHeading
	BlockList
)

// Block is one renderable unit of a plan document.
type Block struct {
	Kind BlockKind
	// Text holds the heading title or paragraph body; Items holds the
	// bullet texts for a list block.
	Text  string
	Items []string
}

// Split decomposes a plan document into renderable blocks. Blocks are
// separated by blank lines; a block starting with "### " is a heading and
// a block whose lines start with "- " is a list.
func Split(doc string) []Block {
	var blocks []Block
	for _, chunk := range strings.Split(doc, "\n\n") {
		chunk = strings.TrimSpace(chunk)
		if chunk == "" {
			continue
		}
		switch {
		case strings.HasPrefix(chunk, "### "):
			blocks = append(blocks, Block{Kind: BlockHeading, Text: strings.TrimPrefix(chunk, "### ")})
		case strings.HasPrefix(chunk, "- "):
			var items []string
			for _, line := range strings.Split(chunk, "\n") {
				items = append(items, strings.TrimPrefix(strings.TrimSpace(line), "- "))
			}
			blocks = append(blocks, Block{Kind: BlockList, Items: items})
		default:
			blocks = append(blocks, Block{Kind: BlockParagraph, Text: chunk})
		}
	}
	return blocks
}

// Headings returns the heading titles of doc in order.
func Headings(doc string) []string {
	var out []string
	for _, b := range Split(doc) {
		if b.Kind == BlockHeading {
			out = append(out, b.Text)
		}
	}
	return out
}
