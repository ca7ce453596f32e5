package eventlog

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"

	"github.com/Masterminds/sprig/v3"

	"github.com/CloudsOfAurora/clouds-of-aurora/internal/world"
)

var templateFuncs = sprig.TxtFuncMap()

// DefaultTemplates describe each event kind from the event's Data.
var DefaultTemplates = map[world.EventKind]string{
	world.EventBuildingPlaced:     `{{ .building | replace "_" " " | title }} placed at ({{ .x }}, {{ .y }})`,
	world.EventBuildingFinished:   `{{ .building | replace "_" " " | title }} at ({{ .x }}, {{ .y }}) is finished`,
	world.EventVillagerAssigned:   `{{ .settler }} now works at {{ .target | replace "_" " " }}`,
	world.EventVillagerUnassigned: `{{ .settler }} stopped working at {{ .target | replace "_" " " }}`,
	world.EventVillagerRecruited:  `{{ .settler }} joined the settlement{{ if not .housed }} but has no home yet{{ end }}`,
	world.EventVillagerDead:       `{{ .settler }} died of {{ .cause | default "unknown causes" }}`,
	world.EventResourceDepleted:   `{{ .node }} ran out of {{ .resource }}; {{ .settler | default "its gatherer" }} is idle again`,
	world.EventSeasonChanged:      `{{ .to }} has begun`,
	world.EventSettlementFounded:  `{{ .name | quote }} was founded with {{ .settlers }} villagers`,
}

// renderer turns event data into descriptions.
type renderer map[world.EventKind]*template.Template

func newRenderer(sources map[world.EventKind]string) (renderer, error) {
	r := make(renderer, len(sources))
	for kind, src := range sources {
		tmpl, err := template.New(string(kind)).Funcs(templateFuncs).Parse(src)
		if err != nil {
			return nil, fmt.Errorf("parsing template for %s: %w", kind, err)
		}
		r[kind] = tmpl
	}
	return r, nil
}

// describe renders the description of e. Kinds without a template get their
// name spelled out.
func (r renderer) describe(e world.Event) (string, error) {
	tmpl, ok := r[e.Kind]
	if !ok {
		return strings.ReplaceAll(string(e.Kind), "_", " "), nil
	}

	data := e.Data
	if data == nil {
		data = map[string]any{}
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return strings.ReplaceAll(string(e.Kind), "_", " "), fmt.Errorf("executing template for %s: %w", e.Kind, err)
	}
	return buf.String(), nil
}
