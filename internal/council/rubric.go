// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package council

import (
	"fmt"
	"os"
	"strings"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/research-council/pkg/types"
)

// Criterion is one scored dimension of a rubric.
type Criterion struct {
	// Name appears verbatim in the reviewer's output and is used to parse
	// the score back out.
	Name string `yaml:"name"`

	// Guidance tells the reviewer what the criterion measures.
	Guidance string `yaml:"guidance"`
}

// Rubric defines one council member: the persona it reviews as and the
// five criteria it scores.
type Rubric struct {
	// Name is the short reviewer identity ("methodology").
	Name string `yaml:"name"`

	// Persona is the full reviewer persona presented to the model.
	Persona string `yaml:"persona"`

	// Role is a one-line statement of what the reviewer evaluates.
	Role string `yaml:"role"`

	// Criteria are the five scored dimensions.
	Criteria [types.NumCriteria]Criterion `yaml:"criteria"`
}

// Validate checks that the rubric is usable.
func (r Rubric) Validate() error {
	if r.Name == "" {
		return fmt.Errorf("rubric has no name")
	}
	for i, c := range r.Criteria {
		if strings.TrimSpace(c.Name) == "" {
			return fmt.Errorf("rubric %s: criterion %d has no name", r.Name, i+1)
		}
	}
	return nil
}

// LoadRubric reads a rubric override from a YAML file.
func LoadRubric(path string) (Rubric, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Rubric{}, fmt.Errorf("reading rubric %s: %w", path, err)
	}
	var r Rubric
	if err := yaml.Unmarshal(data, &r); err != nil {
		return Rubric{}, fmt.Errorf("parsing rubric %s: %w", path, err)
	}
	if err := r.Validate(); err != nil {
		return Rubric{}, err
	}
	return r, nil
}

// MethodologyRubric reviews methodological soundness and evidence quality.
func MethodologyRubric() Rubric {
	return Rubric{
		Name:    "methodology",
		Persona: "Dr. Sarah Chen, a methodological rigor expert specializing in research quality assessment",
		Role:    "Evaluate research reports based on methodological soundness and evidence quality.",
		Criteria: [types.NumCriteria]Criterion{
			{Name: "Source Quality", Guidance: "Are sources credible, authoritative, and from reputable institutions? Peer-reviewed or expert sources used where appropriate?"},
			{Name: "Research Depth", Guidance: "Sufficient number of sources consulted? Depth of analysis beyond surface-level summaries? Multiple aspects explored?"},
			{Name: "Evidence-Based Reasoning", Guidance: "Claims supported by specific evidence and data? Proper citation and attribution throughout?"},
			{Name: "Methodological Soundness", Guidance: "Systematic approach to research evident? Appropriate research tools used? Search strategy articulated?"},
			{Name: "Limitations Acknowledged", Guidance: "Research gaps and limitations identified? Uncertainty expressed where appropriate? Conflicts in sources acknowledged?"},
		},
	}
}

// ComprehensivenessRubric reviews topic coverage and breadth.
func ComprehensivenessRubric() Rubric {
	return Rubric{
		Name:    "comprehensiveness",
		Persona: "Prof. James Rodriguez, a comprehensiveness expert focused on topic coverage and breadth",
		Role:    "Evaluate whether research adequately covers all relevant aspects of the topic.",
		Criteria: [types.NumCriteria]Criterion{
			{Name: "Topic Coverage", Guidance: "All major aspects of the topic addressed? Important subtopics included? Breadth appropriate for the question?"},
			{Name: "Perspective Diversity", Guidance: "Multiple viewpoints and stakeholders represented? Controversies and debates acknowledged?"},
			{Name: "Context & Background", Guidance: "Sufficient background provided? Historical context where relevant? Connections to broader issues?"},
			{Name: "Information Currency", Guidance: "Recent sources and up-to-date information used? Latest developments included?"},
			{Name: "Practical Applicability", Guidance: "Actionable insights and implications provided? Real-world relevance clear?"},
		},
	}
}

// ClarityRubric reviews communication and presentation quality.
func ClarityRubric() Rubric {
	return Rubric{
		Name:    "clarity",
		Persona: "Dr. Emily Thompson, a clarity and communication expert focused on presentation quality",
		Role:    "Evaluate how well research is communicated, structured, and presented.",
		Criteria: [types.NumCriteria]Criterion{
			{Name: "Structural Organization", Guidance: "Logical flow and clear structure? Appropriate use of sections and headers? Easy to follow?"},
			{Name: "Writing Clarity", Guidance: "Clear, concise language? Technical terms explained when needed? Jargon minimized?"},
			{Name: "Synthesis Quality", Guidance: "Information integrated rather than just listed? Connections between ideas clearly drawn?"},
			{Name: "Audience Appropriateness", Guidance: "Appropriate level of detail? Accessible to an educated general audience?"},
			{Name: "Visual Organization", Guidance: "Good use of formatting? Easy to scan? Visual hierarchy clear?"},
		},
	}
}

// systemPrompt renders the rubric as the reviewer's system instructions.
// The output format is load-bearing: parseReview extracts scores from it.
func (r Rubric) systemPrompt() string {
	var b strings.Builder
	fmt.Fprintf(&b, "You are %s.\n\nYOUR ROLE: %s\n\n", r.Persona, r.Role)
	b.WriteString("EVALUATION CRITERIA (rate each on a 1-5 scale, be strict but fair):\n")
	for i, c := range r.Criteria {
		fmt.Fprintf(&b, "%d. %s: %s\n", i+1, c.Name, c.Guidance)
	}
	b.WriteString(`
OUTPUT FORMAT (use this EXACT format):

### Overall Score: [average of the 5 criteria] / 5

### Detailed Assessment:

`)
	for _, c := range r.Criteria {
		fmt.Fprintf(&b, "**%s**: [score]/5\n[2-3 sentences explaining the score]\n\n", c.Name)
	}
	b.WriteString(`### Strengths:
- [specific strength]

### Areas for Improvement:
- [specific, actionable feedback]

### Recommendation: [ACCEPT or REVISE]

IMPORTANT GUIDELINES:
- Be independent in your assessment. Use the full 1-5 scale.
- Be specific in feedback. Avoid generic comments.
- If the overall score is below 3, recommend REVISE with clear guidance; otherwise recommend ACCEPT.`)
	return b.String()
}
