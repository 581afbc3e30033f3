package core

// Mode identifies one of the search/interaction flows. The search modes
// issue backend requests; title and simple are render-only modes used for
// headings and single text blocks.
type Mode string

const (
	ModeLexical      Mode = "lexical"
	ModeSemantical   Mode = "semantical"
	ModeRagbot       Mode = "ragbot"
	ModeMancia       Mode = "mancia"
	ModeVerbetopedia Mode = "verbetopedia"
	ModeTitle        Mode = "title"
	ModeSimple       Mode = "simple"
)

// Modes lists every mode, request-issuing and render-only alike.
func Modes() []Mode {
	return []Mode{ModeLexical, ModeSemantical, ModeRagbot, ModeMancia, ModeVerbetopedia, ModeTitle, ModeSimple}
}

// Known reports whether the mode has a registered renderer.
func (m Mode) Known() bool {
	switch m {
	case ModeLexical, ModeSemantical, ModeRagbot, ModeMancia, ModeVerbetopedia, ModeTitle, ModeSimple:
		return true
	}
	return false
}
