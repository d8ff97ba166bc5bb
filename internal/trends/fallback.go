package trends

import (
	"math/rand"
	"time"

	"github.com/trendwise/trendbot/internal/sources"
)

// FallbackSourceName tags trends drawn from the built-in list.
const FallbackSourceName = "fallback"

// fallbackTopics is the built-in backfill list used when live sources come
// up short. URLs are synthetic; the dedup gate still treats them as canonical.
var fallbackTopics = []struct {
	title       string
	description string
	category    string
	tags        []string
}{
	{
		title:       "Artificial Intelligence Reshapes Software Development",
		description: "AI-assisted coding tools are changing how engineering teams plan, write, and review software.",
		category:    "Technology",
		tags:        []string{"ai", "software", "developer-tools"},
	},
	{
		title:       "The Rise of Edge Computing in Modern Infrastructure",
		description: "Workloads are moving closer to users as edge platforms mature.",
		category:    "Technology",
		tags:        []string{"edge", "cloud", "infrastructure"},
	},
	{
		title:       "Quantum Computing Moves Closer to Practical Use",
		description: "Error-corrected qubits bring real-world quantum applications within reach.",
		category:    "Science",
		tags:        []string{"quantum", "research"},
	},
	{
		title:       "Renewable Energy Storage Hits New Milestones",
		description: "Grid-scale batteries are making renewable power dependable around the clock.",
		category:    "Science",
		tags:        []string{"energy", "climate"},
	},
	{
		title:       "Remote Work Tools Evolve Beyond Video Calls",
		description: "Asynchronous collaboration platforms are redefining the distributed workplace.",
		category:    "Business",
		tags:        []string{"remote-work", "productivity"},
	},
	{
		title:       "Cybersecurity Threats Target Supply Chains",
		description: "Attackers increasingly compromise vendors to reach their real targets.",
		category:    "Technology",
		tags:        []string{"security", "supply-chain"},
	},
	{
		title:       "Streaming Platforms Bet Big on Interactive Content",
		description: "Viewers want to shape the story, and studios are listening.",
		category:    "Entertainment",
		tags:        []string{"streaming", "media"},
	},
	{
		title:       "Wearable Health Tech Gains Clinical Credibility",
		description: "Consumer devices are producing data doctors actually trust.",
		category:    "Health",
		tags:        []string{"health", "wearables"},
	},
	{
		title:       "Electric Vehicles Reach Price Parity With Gas Cars",
		description: "Falling battery costs put EVs within reach of mainstream buyers.",
		category:    "Business",
		tags:        []string{"ev", "automotive"},
	},
	{
		title:       "Space Startups Race to Commercialize Low Earth Orbit",
		description: "Private stations and orbital factories move from pitch decks to launch pads.",
		category:    "Science",
		tags:        []string{"space", "startups"},
	},
}

// fallbackTrends returns up to n built-in trends in shuffled order.
func fallbackTrends(n int) []sources.Trend {
	idx := rand.Perm(len(fallbackTopics))
	if n > len(idx) {
		n = len(idx)
	}

	now := time.Now()
	trends := make([]sources.Trend, 0, n)
	for _, i := range idx[:n] {
		topic := fallbackTopics[i]
		trends = append(trends, sources.Trend{
			Title:       topic.title,
			Description: topic.description,
			Content:     topic.description,
			URL:         syntheticURL(topic.title),
			PublishedAt: now,
			Source:      FallbackSourceName,
			Category:    topic.category,
			Tags:        topic.tags,
			Score:       sources.DefaultScore,
		})
	}
	return trends
}
