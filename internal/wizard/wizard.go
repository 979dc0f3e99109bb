// Package wizard collects a starter sweep setup interactively.
package wizard

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"regexp"
	"strconv"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/supercuts/supercuts/internal/models"
	"github.com/supercuts/supercuts/internal/projectconfig"
	"github.com/supercuts/supercuts/internal/supercuts"
	"github.com/supercuts/supercuts/internal/utils"
	"golang.org/x/term"
)

// DefaultCuts is offered when the user has nothing better in mind.
const DefaultCuts = "met > 0:200:50, jet_pt > 25"

// InitSpec holds all fields collected during the interactive wizard.
type InitSpec struct {
	Definitions []models.CutDefinition
	EventWeight string
	WeightsFile string
}

var cutExpr = regexp.MustCompile(`^([A-Za-z_][\w.\[\]]*)(?:\s*(<=|>=|<|>)\s*|\s+)([^\s<>=]\S*)$`)

// RunInitWizard runs an interactive huh form asking for the cuts to sweep,
// the event weight field and the weights file.
func RunInitWizard(in io.Reader, out io.Writer) (*InitSpec, error) {
	var (
		cutsRaw     = DefaultCuts
		eventWeight = projectconfig.DefaultEventWeight
		weightsFile = projectconfig.DefaultWeightsFile
	)

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Cuts").
				Description("Comma-separated cuts: field [op] pivot, or field [op] start:stop:step").
				Placeholder(DefaultCuts).
				Value(&cutsRaw).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return nil // keeps the default
					}
					_, err := ParseCuts(s)
					return err
				}),
			huh.NewInput().
				Title("Event weight field").
				Placeholder(projectconfig.DefaultEventWeight).
				Value(&eventWeight).
				Validate(func(s string) error {
					if strings.ContainsAny(strings.TrimSpace(s), " \t") {
						return fmt.Errorf("event weight field cannot contain spaces")
					}
					return nil
				}),
			huh.NewInput().
				Title("Weights file").
				Description("YAML file with the per-sample normalization metadata").
				Placeholder(projectconfig.DefaultWeightsFile).
				Value(&weightsFile),
		),
	).
		WithOutput(out)

	// Use accessible mode for non-TTY input (e.g., tests, piped input).
	// Every accessible field scans the reader afresh, so answers are handed
	// out one line at a time.
	if f, ok := in.(*os.File); !ok || !term.IsTerminal(int(f.Fd())) {
		form = form.WithAccessible(true).WithInput(newLineReader(in))
	} else {
		form = form.WithInput(in)
	}

	if err := form.Run(); err != nil {
		return nil, fmt.Errorf("wizard failed: %w", err)
	}

	defs, err := ParseCuts(cutsRaw)
	if err != nil {
		return nil, err
	}
	spec := &InitSpec{
		Definitions: defs,
		EventWeight: strings.TrimSpace(eventWeight),
		WeightsFile: strings.TrimSpace(weightsFile),
	}
	if spec.EventWeight == "" {
		spec.EventWeight = projectconfig.DefaultEventWeight
	}
	if spec.WeightsFile == "" {
		spec.WeightsFile = projectconfig.DefaultWeightsFile
	}
	return spec, nil
}

// DefaultSpec is the setup written by a non-interactive init.
func DefaultSpec() *InitSpec {
	defs, err := ParseCuts(DefaultCuts)
	if err != nil {
		panic(err)
	}
	return &InitSpec{
		Definitions: defs,
		EventWeight: projectconfig.DefaultEventWeight,
		WeightsFile: projectconfig.DefaultWeightsFile,
	}
}

// ParseCuts parses a comma-separated list of cut expressions such as
// "met > 0:200:50, jet_pt >= 25". The operator may be omitted for a cut
// that passes every event.
func ParseCuts(s string) ([]models.CutDefinition, error) {
	exprs := splitAndTrim(s)
	if len(exprs) == 0 {
		return nil, fmt.Errorf("at least one cut is required")
	}

	defs := make([]models.CutDefinition, 0, len(exprs))
	seen := make(map[string]bool)
	for _, expr := range exprs {
		def, err := parseCut(expr)
		if err != nil {
			return nil, err
		}
		if seen[def.Field] {
			return nil, fmt.Errorf("field %q appears more than once", def.Field)
		}
		seen[def.Field] = true
		defs = append(defs, def)
	}
	return defs, nil
}

func parseCut(expr string) (models.CutDefinition, error) {
	m := cutExpr.FindStringSubmatch(expr)
	if m == nil {
		return models.CutDefinition{}, fmt.Errorf("cannot parse cut %q", expr)
	}
	def := models.CutDefinition{Field: m[1], Direction: models.Direction(m[2])}

	parts := strings.Split(m[3], ":")
	nums := make([]float64, len(parts))
	for i, p := range parts {
		v, err := strconv.ParseFloat(p, 64)
		if err != nil {
			return models.CutDefinition{}, fmt.Errorf("cut %q: %q is not a number", expr, p)
		}
		nums[i] = v
	}

	switch len(nums) {
	case 1:
		def.Pivot = utils.Ptr(nums[0])
	case 3:
		def.Start, def.Stop, def.Step = utils.Ptr(nums[0]), utils.Ptr(nums[1]), utils.Ptr(nums[2])
		if _, err := supercuts.Domain(def); err != nil {
			return models.CutDefinition{}, err
		}
	default:
		return models.CutDefinition{}, fmt.Errorf("cut %q: want a pivot or start:stop:step", expr)
	}
	return def, nil
}

// RenderSupercuts renders the definitions as a supercuts JSON file. The
// result is checked by the same loader the optimizer uses.
func RenderSupercuts(defs []models.CutDefinition) ([]byte, error) {
	data, err := json.MarshalIndent(defs, "", "    ")
	if err != nil {
		return nil, fmt.Errorf("failed to render supercuts: %w", err)
	}
	data = append(data, '\n')
	if _, err := supercuts.Parse(data); err != nil {
		return nil, err
	}
	return data, nil
}

// RenderProjectConfig renders a .supercuts.yaml holding the collected
// defaults.
func RenderProjectConfig(spec *InitSpec) ([]byte, error) {
	cfg := projectconfig.New()
	cfg.Defaults.EventWeight = spec.EventWeight
	cfg.Defaults.WeightsFile = spec.WeightsFile
	data, err := cfg.Marshal()
	if err != nil {
		return nil, fmt.Errorf("failed to render %s: %w", projectconfig.FileName, err)
	}
	return data, nil
}

// lineReader returns at most one line per Read, so a bufio.Scanner built on
// top of it never buffers answers meant for the next prompt.
type lineReader struct {
	r       *bufio.Reader
	pending []byte
}

func newLineReader(r io.Reader) *lineReader {
	return &lineReader{r: bufio.NewReader(r)}
}

func (l *lineReader) Read(p []byte) (int, error) {
	if len(l.pending) == 0 {
		line, err := l.r.ReadBytes('\n')
		if len(line) == 0 {
			return 0, err
		}
		l.pending = line
	}
	n := copy(p, l.pending)
	l.pending = l.pending[n:]
	return n, nil
}

func splitAndTrim(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	var result []string
	for _, p := range parts {
		trimmed := strings.TrimSpace(p)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}
