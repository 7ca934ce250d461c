package model

// Section is a top-level menu entry
type Section string

const (
	SectionViews      Section = "views"
	SectionFunctions  Section = "functions"
	SectionProcedures Section = "procedures"
)

// MenuOption is a second-level menu entry
type MenuOption struct {
	Key   string
	Title string
}

// MenuSection is a top-level entry with its options. Param is the query
// parameter that carries the selected option.
type MenuSection struct {
	Section Section
	Title   string
	Heading string
	Prompt  string
	Param   string
	Options []MenuOption
}

// Path is the dashboard route of the section
func (s MenuSection) Path() string {
	return "/" + string(s.Section)
}

// Resolve returns the option for key, falling back to the first option
func (s MenuSection) Resolve(key string) MenuOption {
	if option, ok := s.Lookup(key); ok {
		return option
	}
	return s.Options[0]
}

// Lookup returns the option for key
func (s MenuSection) Lookup(key string) (MenuOption, bool) {
	for _, option := range s.Options {
		if option.Key == key {
			return option, true
		}
	}
	return MenuOption{}, false
}

// Menu returns the dashboard navigation in display order
func Menu() []MenuSection {
	views := make([]MenuOption, 0, len(Views()))
	for _, v := range Views() {
		views = append(views, MenuOption{Key: string(v), Title: v.Title()})
	}

	functions := make([]MenuOption, 0, len(Functions()))
	for _, f := range Functions() {
		functions = append(functions, MenuOption{Key: string(f), Title: f.Title()})
	}

	procedures := make([]MenuOption, 0, len(Procedures()))
	for _, p := range Procedures() {
		procedures = append(procedures, MenuOption{Key: string(p), Title: p.Title()})
	}

	return []MenuSection{
		{
			Section: SectionViews,
			Title:   "View Database Views",
			Heading: "Database Views",
			Prompt:  "Select View",
			Param:   "view",
			Options: views,
		},
		{
			Section: SectionFunctions,
			Title:   "Execute Functions",
			Heading: "Database Functions",
			Prompt:  "Select Function",
			Param:   "fn",
			Options: functions,
		},
		{
			Section: SectionProcedures,
			Title:   "Run Stored Procedures",
			Heading: "Stored Procedures",
			Prompt:  "Select Procedure",
			Param:   "proc",
			Options: procedures,
		},
	}
}

// MenuSectionFor returns the menu entry of a section
func MenuSectionFor(section Section) MenuSection {
	for _, s := range Menu() {
		if s.Section == section {
			return s
		}
	}
	panic("unknown menu section " + string(section))
}
