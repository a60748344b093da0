package webpilot

import (
	"github.com/fussbanana/webpilot/automation"
	"github.com/fussbanana/webpilot/internal/config"
	"github.com/fussbanana/webpilot/probe"
	"github.com/fussbanana/webpilot/selector"
)

// buildUploadSequence uploads a document as a pasted-text source. The two
// conditional checkbox steps toggle "select all sources" on and off so the
// assistant re-indexes with the fresh source included.
func buildUploadSequence(cat selector.Catalog, docText string, t config.TimeoutsConfig) *automation.Sequence {
	tabs := selector.Selector{Locator: cat.Tabs.Locator}
	return automation.NewSequence(SeqUploadDocument,
		automation.ClickMatchingText{Sel: tabs, Text: cat.Tabs.SourcesLabel, Timeout: t.Step},
		automation.ClickWhenVisible{Sel: cat.AddSourceButton, Timeout: t.Step},
		automation.ClickMatchingText{Sel: cat.CopyTextChip, Timeout: t.Step},
		automation.TypeText{Sel: cat.PasteTextArea, Text: docText, Timeout: t.Step},
		automation.ClickMatchingText{Sel: cat.InsertButton, Timeout: t.Step},
		automation.ConditionalClick{Sel: cat.AllSourcesCheckbox, ClickIf: probe.ClickIfUnchecked},
		automation.ConditionalClick{Sel: cat.AllSourcesCheckbox, ClickIf: probe.ClickIfChecked},
		automation.WaitForDisappear{Sel: cat.Spinner, Timeout: t.Spinner},
	)
}

// buildPromptSequence switches to the chat tab, types the prompt and sends
// it.
func buildPromptSequence(cat selector.Catalog, promptText string, t config.TimeoutsConfig) *automation.Sequence {
	tabs := selector.Selector{Locator: cat.Tabs.Locator}
	return automation.NewSequence(SeqInsertPrompt,
		automation.ClickMatchingText{Sel: tabs, Text: cat.Tabs.ChatLabel, Timeout: t.Step},
		automation.TypeText{Sel: cat.QueryField, Text: promptText, Timeout: t.Step},
		automation.ClickWhenVisible{Sel: cat.SendButton, Timeout: t.Step},
	)
}

// buildExtractSequence waits for the assistant's response text to stop
// growing and yields it through the extraction callback.
func buildExtractSequence(cat selector.Catalog, t config.TimeoutsConfig) *automation.Sequence {
	return automation.NewSequence(SeqExtractResponse,
		automation.ExtractStableText{
			Sel:            cat.ResponseText,
			MasterTimeout:  t.ExtractMaster,
			StabilityDelay: t.ExtractStability,
		},
	)
}
