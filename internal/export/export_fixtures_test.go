package export

import "github.com/iksnae/enhance-session/internal"

func sampleEntries() []internal.HistoryEntry {
	return []internal.HistoryEntry{
		{
			ID:             1760011200000,
			Task:           "write a poem",
			LazyPrompt:     "poem about rain",
			EnhancedPrompt: "# Role\nYou are a poet.\n\n```text\nrain **falls**\n```",
			CreatedAt:      "10/9/2025, 12:00:00 PM",
			TaskID:         "11111111-2222-3333-4444-555555555555",
		},
		{
			ID:             1760011260000,
			Task:           "",
			LazyPrompt:     "summarize __init__ files",
			EnhancedPrompt: "Summarize each file.",
			CreatedAt:      "10/9/2025, 12:01:00 PM",
		},
	}
}
