// Package selector holds the catalog of UI targets the automation touches.
// Pure data: every entry is a locator plus, where relevant, a visible-text
// label or a state class. Loaded once, never mutated, safe to share across
// all automated windows.
package selector

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Selector locates one UI target. MatchText narrows a broad locator by
// visible text; StateClass marks a toggleable state on the element.
type Selector struct {
	Locator    string `yaml:"locator"`
	MatchText  string `yaml:"match_text,omitempty"`
	StateClass string `yaml:"state_class,omitempty"`
}

// Tabs locates the assistant's main tab strip. The same locator matches
// every tab; labels tell them apart.
type Tabs struct {
	Locator      string `yaml:"locator"`
	SourcesLabel string `yaml:"sources_label"`
	ChatLabel    string `yaml:"chat_label"`
}

// Catalog aggregates every selector the automation workflows use.
type Catalog struct {
	Tabs               Tabs     `yaml:"tabs"`
	AddSourceButton    Selector `yaml:"add_source_button"`
	CopyTextChip       Selector `yaml:"copy_text_chip"`
	PasteTextArea      Selector `yaml:"paste_text_area"`
	InsertButton       Selector `yaml:"insert_button"`
	AllSourcesCheckbox Selector `yaml:"all_sources_checkbox"`
	QueryField         Selector `yaml:"query_field"`
	SendButton         Selector `yaml:"send_button"`
	Spinner            Selector `yaml:"spinner"`
	ResponseText       Selector `yaml:"response_text"`
}

// Default returns the catalog observed against the live assistant UI.
// Labels follow the account's display language; override via YAML when the
// UI is localised differently.
func Default() Catalog {
	return Catalog{
		Tabs: Tabs{
			Locator:      `div[role="tab"]`,
			SourcesLabel: "Sources",
			ChatLabel:    "Chat",
		},
		AddSourceButton: Selector{
			Locator: `button[aria-label="Add source"]`,
		},
		CopyTextChip: Selector{
			Locator:   "mat-chip.chip-group__chip",
			MatchText: "Copied text",
		},
		PasteTextArea: Selector{
			Locator: `textarea[matinput][formcontrolname="text"]`,
		},
		InsertButton: Selector{
			Locator:   "button",
			MatchText: "Insert",
		},
		AllSourcesCheckbox: Selector{
			Locator:    `input[aria-label="Select all sources"]`,
			StateClass: "mdc-checkbox--selected",
		},
		QueryField: Selector{
			Locator: `textarea[aria-label="Query box"]`,
		},
		SendButton: Selector{
			Locator: `button.submit-button[aria-label="Submit"]:not([disabled])`,
		},
		Spinner: Selector{
			Locator: `[role="progressbar"].mat-mdc-progress-spinner[mode="indeterminate"]`,
		},
		ResponseText: Selector{
			Locator: "div.chat-message-pair:last-of-type .to-user-message-card-content pre code",
		},
	}
}

// Load reads YAML overrides from path on top of the default catalog.
// Entries absent from the file keep their defaults.
func Load(path string) (Catalog, error) {
	cat := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return cat, fmt.Errorf("selector: read catalog: %w", err)
	}
	if err := yaml.Unmarshal(data, &cat); err != nil {
		return cat, fmt.Errorf("selector: parse catalog: %w", err)
	}
	return cat, nil
}
