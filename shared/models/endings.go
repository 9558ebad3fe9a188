package models

// Ending describes one ending classification a node can carry.
type Ending struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Color       string `json:"color"`
	Emoji       string `json:"emoji"`
}

// Endings is the catalogue offered by the node editor, in display order.
var Endings = []Ending{
	{Name: "Perfect Ending", Description: "The ideal outcome; all goals achieved, secrets uncovered, and no compromises made.", Color: "#81C784", Emoji: "🌟"},
	{Name: "Good Ending", Description: "A satisfying resolution, though not all objectives may be fulfilled.", Color: "#81C784", Emoji: "✅"},
	{Name: "True Ending", Description: "The canon or 'intended' ending; often requires specific or hidden choices.", Color: "#D4A373", Emoji: "🧭"},
	{Name: "Peaceful Ending", Description: "The conflict is resolved peacefully or nonviolently.", Color: "#81C784", Emoji: "🕊️"},
	{Name: "Heroic Ending", Description: "The protagonist sacrifices something or triumphs in a grand way.", Color: "#D4A373", Emoji: "🛡️"},
	{Name: "Bittersweet Ending", Description: "A mix of happiness and sorrow; gains come with significant loss.", Color: "#B8B8B8", Emoji: "🍂"},
	{Name: "Enlightenment Ending", Description: "The protagonist gains deep understanding or transcends normal outcomes.", Color: "#F2F2F2", Emoji: "🧘"},
	{Name: "Ascension Ending", Description: "The protagonist becomes a legendary or godlike figure.", Color: "#F2F2F2", Emoji: "🌌"},
	{Name: "Normal Ending", Description: "A typical conclusion based on average choices; neither especially good nor bad.", Color: "#B8B8B8", Emoji: "📖"},
	{Name: "Loop Ending", Description: "The story ends where it began, often implying a cycle or repetition.", Color: "#787878", Emoji: "🔁"},
	{Name: "Ambiguous Ending", Description: "Open to interpretation; unclear whether it's good or bad.", Color: "#B8B8B8", Emoji: "❔"},
	{Name: "Incomplete Ending", Description: "Leaves threads unresolved or sets up a sequel.", Color: "#787878", Emoji: "⏳"},
	{Name: "Puzzle Ending", Description: "Resolves the plot but leaves a mystery or unanswered question.", Color: "#D4A373", Emoji: "🧩"},
	{Name: "Bad Ending", Description: "A failed outcome; major losses, defeat, or irreversible consequences.", Color: "#FF6B6B", Emoji: "⚠️"},
	{Name: "Death Ending", Description: "The protagonist dies, often as a direct result of choices.", Color: "#FF6B6B", Emoji: "💀"},
	{Name: "Destruction Ending", Description: "The world or setting is destroyed, partially or completely.", Color: "#FF6B6B", Emoji: "🔥"},
	{Name: "Tragic Ending", Description: "The protagonist suffers emotionally or loses something dear.", Color: "#B8B8B8", Emoji: "💔"},
	{Name: "Corruption Ending", Description: "The protagonist becomes evil, corrupted, or loses their morality.", Color: "#5A5A5A", Emoji: "😈"},
	{Name: "Forgotten Ending", Description: "The protagonist’s efforts are erased, forgotten, or meaningless.", Color: "#404040", Emoji: "🕳️"},
	{Name: "Locked Ending", Description: "A clearly bad or premature ending due to missing critical choices.", Color: "#404040", Emoji: "🔒"},
	{Name: "Mindfuck Ending", Description: "Reality collapses; nothing was as it seemed. Reader is left questioning everything.", Color: "#D4A373", Emoji: "🌀"},
	{Name: "Cutscene Ending", Description: "The story ends with a 'cinematic' monologue or event far outside player control.", Color: "#787878", Emoji: "🎬"},
	{Name: "Author Ending", Description: "The protagonist meets the author or discovers they’re fictional. Breaks the fourth wall.", Color: "#D4A373", Emoji: "📚"},
	{Name: "Box Ending", Description: "The story ends with the protagonist being sealed away—physically, mentally, or existentially.", Color: "#404040", Emoji: "📦"},
	{Name: "Glitch Ending", Description: "The world malfunctions or 'glitches.' Possibly part of a digital simulation or deeper plot.", Color: "#5A5A5A", Emoji: "👾"},
	{Name: "Xeno Ending", Description: "The protagonist is abducted or spirited away by alien/supernatural forces.", Color: "#81C784", Emoji: "👽"},
	{Name: "Reset Ending", Description: "The timeline resets, possibly with new knowledge or insight.", Color: "#D4A373", Emoji: "🔄"},
	{Name: "Resignation Ending", Description: "The protagonist gives up or walks away from their journey. Quiet and heavy.", Color: "#787878", Emoji: "🛑"},
	{Name: "Reflection Ending", Description: "The protagonist confronts their inner self or past decisions in a final scene.", Color: "#B8B8B8", Emoji: "🪞"},
	{Name: "Fade Ending", Description: "The story dissolves into memory, dream, or stardust. Gentle, ethereal closure.", Color: "#B8B8B8", Emoji: "🌫️"},
	{Name: "Hollow Ending", Description: "The goal is achieved, but it feels empty. Emptiness, regret, or apathy dominate.", Color: "#404040", Emoji: "🕯️"},
	{Name: "Silent Ending", Description: "The story ends with no dialogue or explanation. Pure atmosphere or emotion.", Color: "#121212", Emoji: "🤫"},
	{Name: "Branch Split Ending", Description: "The ending literally opens new storylines or games; a fork in the narrative multiverse.", Color: "#D4A373", Emoji: "🌿"},
	{Name: "Archivist Ending", Description: "You unlock hidden lore or “true history” that reframes the entire plot.", Color: "#F2F2F2", Emoji: "📜"},
	{Name: "Tether Ending", Description: "Your actions link this CYOA’s world to another (e.g., a future or past story).", Color: "#D4A373", Emoji: "⛓️"},
	{Name: "Threaded Ending", Description: "Implies the story continues elsewhere—in books, memory, or secret files.", Color: "#B8B8B8", Emoji: "🧵"},
	{Name: "Gambler’s Ending", Description: "Ends on a risky gamble or coin flip—chance itself decides your fate.", Color: "#FFD700", Emoji: "🎲"},
	{Name: "Ascendant Ending", Description: "You transcend the human plane—becoming a spirit, god, or concept.", Color: "#F2F2F2", Emoji: "✨"},
	{Name: "Mythos Ending", Description: "Your story becomes legend, distorted by time and passed down.", Color: "#D4A373", Emoji: "📖"},
	{Name: "Legacy Ending", Description: "The story ends years later, showing the world your choices shaped.", Color: "#81C784", Emoji: "🏛️"},
	{Name: "Void Ending", Description: "You fall into the unknown—neither dead nor alive, only forgotten.", Color: "#121212", Emoji: "🌑"},
	{Name: "Paradox Ending", Description: "You cause a time or logic paradox that ends the world—or saves it.", Color: "#FF6B6B", Emoji: "♾️"},
	{Name: "None", Description: "Not an ending", Color: "#404040", Emoji: "❌"},
}

// LookupEnding finds an ending by name.
func LookupEnding(name string) (Ending, bool) {
	for _, e := range Endings {
		if e.Name == name {
			return e, true
		}
	}
	return Ending{}, false
}

// PredefinedTags are the story tags offered by the metadata editor.
var PredefinedTags = []string{
	"powers simple", "simple", "powers", "comfy", "humorous",
	"choose multiple", "mundane", "dark", "drawbacks", "low-level", "companions",
	"fantasy", "worldbuilding", "extensive", "magic", "sci-fi", "themed", "meta",
	"gear", "combat", "survival", "gift of faves", "media", "dragons", "multiplayer",
	"food & drink", "political", "isekai", "unique", "apocalyptic", "family", "food",
	"realistic", "medieval", "farming", "domain", "horror", "artistic", "rulebreaking",
	"kingdom-building", "long", "prison", "pet", "franchise", "rng", "crime",
	"science-fantasy", "future", "western", "zombies", "god-like", "pocket dimension",
	"time", "trapped", "dragon", "adventure", "school", "legend", "history", "non-fantasy",
	"seasonal", "abstract", "werewolf", "pets", "planeswalking", "anime", "character",
	"superheroes", "modern", "weapon", "runes", "design", "time travel", "mounts", "roll",
	"home", "military", "cute", "steampunk", "nsfw text", "base-building",
}
