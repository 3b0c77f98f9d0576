package model

// FlagCode identifies a flag in the catalog (e.g. "afghanistan")
type FlagCode string

// FlagHints holds the optional attributes hints are built from.
// Zero values mean the attribute is absent.
type FlagHints struct {
	Population string `json:"population,omitempty" yaml:"population,omitempty"`
	Capital    string `json:"capital,omitempty" yaml:"capital,omitempty"`
	WordSize   int    `json:"word_size,omitempty" yaml:"word_size,omitempty"`
	WordCount  *int   `json:"word_count,omitempty" yaml:"word_count,omitempty"`
	LastLetter string `json:"last_letter,omitempty" yaml:"last_letter,omitempty"`
}

// FlagRecord is an immutable catalog entry
type FlagRecord struct {
	Code  FlagCode  `json:"code" yaml:"code"`
	Image string    `json:"imagePath" yaml:"image"`
	Hints FlagHints `json:"hints" yaml:"hints"`
}
