// Package command provides the command registry, parser, and built-in command
// definitions of the text front end.
package command

// Categories for organizing commands.
const (
	CategoryFishing  = "fishing"
	CategoryShop     = "shop"
	CategoryInfo     = "info"
	CategoryProgress = "progress"
	CategorySave     = "save"
	CategorySystem   = "system"
)

// Handler identifiers mapping commands to game operations.
const (
	HandlerCast      = "cast"
	HandlerReel      = "reel"
	HandlerRelease   = "release"
	HandlerAck       = "ack"
	HandlerStatus    = "status"
	HandlerEnv       = "env"
	HandlerInventory = "inventory"
	HandlerDex       = "dex"
	HandlerTasks     = "tasks"
	HandlerClaim     = "claim"
	HandlerShop      = "shop"
	HandlerBuy       = "buy"
	HandlerLure      = "lure"
	HandlerScenes    = "scenes"
	HandlerScene     = "scene"
	HandlerUnlock    = "unlock"
	HandlerAlbum     = "album"
	HandlerSet       = "set"
	HandlerSave      = "save"
	HandlerExport    = "export"
	HandlerImport    = "import"
	HandlerValidate  = "validate"
	HandlerInfo      = "info"
	HandlerReset     = "reset"
	HandlerHelp      = "help"
	HandlerQuit      = "quit"
)

// Command defines a player-invocable command.
type Command struct {
	// Name is the canonical command name.
	Name string
	// Aliases are alternate names for this command.
	Aliases []string
	// Usage shows the argument syntax, empty when the command takes none.
	Usage string
	// Help is the short help text displayed to players.
	Help string
	// Category groups the command.
	Category string
	// Handler maps to the game operation.
	Handler string
	// MinArgs is the number of arguments the command requires.
	MinArgs int
}

// BuiltinCommands returns all built-in commands for the game.
func BuiltinCommands() []Command {
	return []Command{
		// Fishing commands
		{Name: "cast", Aliases: []string{"c"}, Help: "Cast your line", Category: CategoryFishing, Handler: HandlerCast},
		{Name: "reel", Aliases: []string{"r"}, Help: "Reel in a hooked fish; repeat to keep reeling", Category: CategoryFishing, Handler: HandlerReel},
		{Name: "release", Aliases: []string{"rel"}, Help: "Stop reeling to ease the line tension", Category: CategoryFishing, Handler: HandlerRelease},
		{Name: "ack", Aliases: []string{"ok"}, Help: "Dismiss a catch or failure and get ready to cast", Category: CategoryFishing, Handler: HandlerAck},
		{Name: "lure", Usage: "<id>", Help: "Switch to an owned lure", Category: CategoryFishing, Handler: HandlerLure, MinArgs: 1},

		// Info commands
		{Name: "status", Aliases: []string{"st"}, Help: "Show player, gear and fishing state", Category: CategoryInfo, Handler: HandlerStatus},
		{Name: "env", Aliases: []string{"weather"}, Help: "Show weather, time and season", Category: CategoryInfo, Handler: HandlerEnv},
		{Name: "inventory", Aliases: []string{"inv", "i"}, Help: "Show lures, catches and album", Category: CategoryInfo, Handler: HandlerInventory},
		{Name: "dex", Aliases: []string{"collection"}, Help: "Show the species collection", Category: CategoryInfo, Handler: HandlerDex},
		{Name: "scenes", Help: "List fishing spots", Category: CategoryInfo, Handler: HandlerScenes},

		// Progress commands
		{Name: "tasks", Help: "List active tasks", Category: CategoryProgress, Handler: HandlerTasks},
		{Name: "claim", Usage: "<task id>", Help: "Claim a completed task reward", Category: CategoryProgress, Handler: HandlerClaim, MinArgs: 1},
		{Name: "album", Usage: "<add|remove> <fish>", Help: "Add or remove a catch from the photo album", Category: CategoryProgress, Handler: HandlerAlbum, MinArgs: 2},
		{Name: "scene", Aliases: []string{"go"}, Usage: "<id>", Help: "Travel to an unlocked fishing spot", Category: CategoryProgress, Handler: HandlerScene, MinArgs: 1},

		// Shop commands
		{Name: "shop", Help: "List equipment for sale", Category: CategoryShop, Handler: HandlerShop},
		{Name: "buy", Usage: "<rod|reel|lure|line> <id>", Help: "Buy equipment", Category: CategoryShop, Handler: HandlerBuy, MinArgs: 2},
		{Name: "unlock", Usage: "<scene>", Help: "Unlock a fishing spot", Category: CategoryShop, Handler: HandlerUnlock, MinArgs: 1},

		// Save commands
		{Name: "save", Help: "Save the game now", Category: CategorySave, Handler: HandlerSave},
		{Name: "export", Usage: "<file>", Help: "Export the saved game to a file", Category: CategorySave, Handler: HandlerExport, MinArgs: 1},
		{Name: "import", Usage: "<file>", Help: "Import a saved game from a file", Category: CategorySave, Handler: HandlerImport, MinArgs: 1},
		{Name: "validate", Help: "Check the saved game for problems", Category: CategorySave, Handler: HandlerValidate},
		{Name: "info", Help: "Show what is saved and when", Category: CategorySave, Handler: HandlerInfo},
		{Name: "reset", Usage: "confirm", Help: "Delete the saved game and start over", Category: CategorySave, Handler: HandlerReset, MinArgs: 1},

		// System commands
		{Name: "set", Usage: "<sound|vibration|graphics|controls|darkmode> <value>", Help: "Change a setting", Category: CategorySystem, Handler: HandlerSet, MinArgs: 2},
		{Name: "help", Aliases: []string{"?"}, Help: "Show available commands", Category: CategorySystem, Handler: HandlerHelp},
		{Name: "quit", Aliases: []string{"exit", "q"}, Help: "Save and leave the game", Category: CategorySystem, Handler: HandlerQuit},
	}
}
