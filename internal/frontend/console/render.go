package console

import (
	"fmt"
	"sort"
	"strings"

	"github.com/cory-johannsen/lurefish/internal/game/catalog"
	"github.com/cory-johannsen/lurefish/internal/game/command"
	"github.com/cory-johannsen/lurefish/internal/game/events"
	"github.com/cory-johannsen/lurefish/internal/game/fishing"
	"github.com/cory-johannsen/lurefish/internal/gameserver"
	"github.com/cory-johannsen/lurefish/internal/storage"
)

const gaugeWidth = 20

// RenderStatus formats the player, the equipped gear and the fishing stage.
func RenderStatus(snap gameserver.Snapshot, cat *catalog.Catalog) string {
	var b strings.Builder
	p := snap.Player
	b.WriteString(Colorf(BrightYellow, "Level %d", p.Level))
	fmt.Fprintf(&b, "  exp %d  coins %d  diamonds %d\n", p.Exp, p.Coins, p.Diamonds)
	fmt.Fprintf(&b, "Fishing at %s\n", sceneName(cat, snap.Scene))

	e := snap.Equipment
	b.WriteString(Colorize(Cyan, "Gear:"))
	b.WriteString("\n")
	fmt.Fprintf(&b, "  rod   %s\n", e.Rod.Name)
	fmt.Fprintf(&b, "  reel  %s\n", e.Reel.Name)
	fmt.Fprintf(&b, "  lure  %s %s\n", e.Lure.Name, durability(e.Lure.Durability))
	fmt.Fprintf(&b, "  line  %s %s\n", e.Line.Name, durability(e.Line.Durability))

	b.WriteString(RenderFishing(snap.Fishing))
	return b.String()
}

// RenderFishing formats the current stage of the cast cycle.
func RenderFishing(st fishing.State) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Stage: %s\n", Colorize(stageColor(st.Stage), string(st.Stage)))
	switch st.Stage {
	case fishing.StageWaiting:
		fmt.Fprintf(&b, "  lure at %.1fm, waited %.0fs\n", st.CastDistance, st.Timer)
	case fishing.StageHooked, fishing.StageReeling:
		if st.TargetFish != nil {
			fmt.Fprintf(&b, "  on the line: %s\n", st.TargetFish.Name)
		}
		tensionColor := Green
		if st.MaxTension > 0 && st.Tension >= st.MaxTension*0.8 {
			tensionColor = BrightRed
		}
		fmt.Fprintf(&b, "  tension  %s %.0f/%.0f\n", Colorize(tensionColor, bar(st.Tension, st.MaxTension, gaugeWidth)), st.Tension, st.MaxTension)
		fmt.Fprintf(&b, "  progress %s %.0f%%\n", bar(st.Progress, 100, gaugeWidth), st.Progress)
	case fishing.StageCaught:
		if st.TargetFish != nil {
			fmt.Fprintf(&b, "  landed: %s (type ack)\n", st.TargetFish.Name)
		}
	case fishing.StageFailed:
		fmt.Fprintf(&b, "  %s (type ack)\n", strings.ReplaceAll(string(st.Outcome), "_", " "))
	}
	return b.String()
}

// RenderEnvironment formats the weather and clock.
func RenderEnvironment(snap gameserver.Snapshot, cat *catalog.Catalog) string {
	w := snap.Weather
	weather := w.Condition
	if wt, ok := cat.Weather(w.Condition); ok {
		weather = wt.Name
	}
	season := snap.Time.Season
	if s, ok := cat.Season(season); ok {
		season = s.Name
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%s, day %d of %s (%s)\n", snap.Time, snap.Time.Day, season, snap.Time.Period())
	fmt.Fprintf(&b, "%s, %.1f°C, wind %.1f m/s from %.0f°\n", weather, w.Temperature, w.WindSpeed, w.WindDirection)
	return b.String()
}

// RenderInventory formats owned lures, recent catches and the album.
func RenderInventory(snap gameserver.Snapshot) string {
	var b strings.Builder
	inv := snap.Inventory
	b.WriteString(Colorize(Cyan, "Lures:"))
	b.WriteString("\n")
	for _, l := range inv.Lures {
		marker := " "
		if l.Lure.ID == snap.Equipment.Lure.ID {
			marker = "*"
		}
		fmt.Fprintf(&b, " %s %-12s x%d %s\n", marker, l.Lure.ID, l.Quantity, durability(l.Lure.Durability))
	}

	fmt.Fprintf(&b, "%s %d\n", Colorize(Cyan, "Fish caught:"), len(inv.CaughtFish))
	recent := inv.CaughtFish
	if len(recent) > 10 {
		recent = recent[len(recent)-10:]
	}
	album := make(map[string]bool, len(inv.PhotoAlbum))
	for _, id := range inv.PhotoAlbum {
		album[id] = true
	}
	for _, f := range recent {
		photo := ""
		if album[f.InstanceID] {
			photo = Colorize(Magenta, " [album]")
		}
		fmt.Fprintf(&b, "  %s  %-18s %6.2f kg %5d coins%s\n", shortID(f.InstanceID), f.Name, f.Weight, f.Value, photo)
	}
	fmt.Fprintf(&b, "%s %d photos\n", Colorize(Cyan, "Album:"), len(inv.PhotoAlbum))
	return b.String()
}

// RenderDex formats the species collection: caught species with their records,
// unknown species as question marks.
func RenderDex(snap gameserver.Snapshot, cat *catalog.Catalog) string {
	var b strings.Builder
	all := cat.AllFish()
	found := 0
	for _, f := range all {
		rec, ok := snap.Statistics[f.ID]
		if !ok || rec.Caught == 0 {
			fmt.Fprintf(&b, "  #%03d %s\n", f.ID, Colorize(Dim, "???"))
			continue
		}
		found++
		fmt.Fprintf(&b, "  #%03d %-18s %-10s caught %d, heaviest %.2f kg\n",
			f.ID, f.Name, Colorize(rarityColor(f.Rarity), string(f.Rarity)), rec.Caught, rec.HeaviestWeight)
	}
	return Colorf(BrightYellow, "Collection %d/%d", found, len(all)) + "\n" + b.String()
}

// RenderTasks formats the task list with progress and claim state.
func RenderTasks(snap gameserver.Snapshot) string {
	if len(snap.Tasks) == 0 {
		return Colorize(Dim, "No tasks right now.") + "\n"
	}
	var b strings.Builder
	for _, t := range snap.Tasks {
		target := float64(t.Target.Count)
		if t.Target.Weight > 0 {
			target = t.Target.Weight
		}
		state := fmt.Sprintf("%.1f/%.1f", t.Progress, target)
		if t.Complete() {
			state = Colorize(BrightGreen, "ready to claim")
		}
		fmt.Fprintf(&b, "  %d. %s: %s (%d coins) %s\n", t.ID, t.Name, t.Description, t.Reward, state)
	}
	return b.String()
}

// RenderShop formats every item for sale, marking what is owned or equipped.
func RenderShop(snap gameserver.Snapshot, cat *catalog.Catalog) string {
	var b strings.Builder
	fmt.Fprintf(&b, "You have %s.\n", Colorf(BrightYellow, "%d coins", snap.Player.Coins))
	e := snap.Equipment
	section := func(title string, items []catalog.Item, equipped string) {
		b.WriteString(Colorize(Cyan, title))
		b.WriteString("\n")
		for _, it := range items {
			note := ""
			if it.ItemID() == equipped {
				note = Colorize(Green, " (equipped)")
			}
			fmt.Fprintf(&b, "  %-14s %-22s %6d%s\n", it.ItemID(), it.ItemName(), it.Price(), note)
		}
	}
	section("Rods:", items(cat.Rods()), e.Rod.ID)
	section("Reels:", items(cat.Reels()), e.Reel.ID)
	section("Lures:", items(cat.Lures()), e.Lure.ID)
	section("Lines:", items(cat.Lines()), e.Line.ID)
	return b.String()
}

func items[T catalog.Item](in []T) []catalog.Item {
	out := make([]catalog.Item, len(in))
	for i, it := range in {
		out[i] = it
	}
	return out
}

// RenderScenes formats the fishing spots with their lock state.
func RenderScenes(snap gameserver.Snapshot, cat *catalog.Catalog) string {
	var b strings.Builder
	for _, s := range cat.Scenes() {
		state := Colorf(Yellow, "locked, %d coins", s.UnlockCost)
		if snap.Player.HasScene(s.ID) {
			state = Colorize(Green, "unlocked")
		}
		marker := " "
		if s.ID == snap.Scene {
			marker = "*"
		}
		fmt.Fprintf(&b, " %s %-12s %-20s %-10s %s\n", marker, s.ID, s.Name, s.Type, state)
	}
	return b.String()
}

// RenderHelp lists the commands grouped by category.
func RenderHelp(r *command.Registry) string {
	var b strings.Builder
	cats := r.CommandsByCategory()
	names := make([]string, 0, len(cats))
	for c := range cats {
		names = append(names, c)
	}
	sort.Strings(names)
	for _, c := range names {
		b.WriteString(Colorize(Cyan, strings.ToUpper(c[:1])+c[1:]))
		b.WriteString("\n")
		for _, cmd := range cats[c] {
			usage := cmd.Name
			if cmd.Usage != "" {
				usage += " " + cmd.Usage
			}
			fmt.Fprintf(&b, "  %-34s %s\n", usage, cmd.Help)
		}
	}
	return b.String()
}

// RenderNotification formats one notification event.
func RenderNotification(ev events.Event) string {
	switch ev.Severity {
	case events.SeveritySuccess:
		return Colorize(BrightGreen, ev.Message)
	case events.SeverityWarning:
		return Colorize(BrightYellow, ev.Message)
	case events.SeverityError:
		return Colorize(BrightRed, ev.Message)
	default:
		return Colorize(BrightWhite, ev.Message)
	}
}

// RenderValidation formats a storage validation report.
func RenderValidation(r storage.ValidationReport) string {
	if r.Valid {
		return Colorize(Green, "Saved game is valid.") + "\n"
	}
	var b strings.Builder
	b.WriteString(Colorf(BrightRed, "Saved game has %d problem(s):", len(r.Issues)))
	b.WriteString("\n")
	for _, issue := range r.Issues {
		fmt.Fprintf(&b, "  - %s\n", issue)
	}
	return b.String()
}

// RenderInfo formats what is stored and when it was last saved.
func RenderInfo(info storage.Info) string {
	var b strings.Builder
	last := "never"
	if !info.LastSave.IsZero() {
		last = info.LastSave.Format("2006-01-02 15:04:05")
	}
	fmt.Fprintf(&b, "Last save: %s\n", last)
	fmt.Fprintf(&b, "Stored keys: %d\n", info.TotalKeys)
	keys := make([]string, 0, len(info.DataExists))
	for k := range info.DataExists {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		mark := Colorize(Dim, "empty")
		if info.DataExists[k] {
			mark = Colorize(Green, "saved")
		}
		fmt.Fprintf(&b, "  %-28s %s\n", k, mark)
	}
	return b.String()
}

// RenderImport formats the per-key outcome of an import.
func RenderImport(r storage.ImportResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Imported %d key(s).\n", len(r.Imported))
	if len(r.Skipped) > 0 {
		fmt.Fprintf(&b, "Skipped unknown keys: %s\n", strings.Join(r.Skipped, ", "))
	}
	keys := make([]string, 0, len(r.Failed))
	for k := range r.Failed {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		b.WriteString(Colorf(BrightRed, "  %s: %s", k, r.Failed[k]))
		b.WriteString("\n")
	}
	return b.String()
}

func sceneName(cat *catalog.Catalog, id string) string {
	if s, ok := cat.Scene(id); ok {
		return s.Name
	}
	return id
}

func durability(d float64) string {
	color := Green
	switch {
	case d <= 0:
		color = BrightRed
	case d < 30:
		color = Yellow
	}
	return Colorf(color, "%.0f%%", d)
}

func stageColor(s fishing.Stage) string {
	switch s {
	case fishing.StageHooked, fishing.StageReeling:
		return BrightYellow
	case fishing.StageCaught:
		return BrightGreen
	case fishing.StageFailed:
		return BrightRed
	default:
		return White
	}
}

func rarityColor(r catalog.Rarity) string {
	switch r {
	case catalog.RarityUncommon:
		return Green
	case catalog.RarityRare:
		return Blue
	case catalog.RarityEpic:
		return BrightMagenta
	case catalog.RarityLegendary:
		return BrightYellow
	default:
		return White
	}
}

// shortID shortens an instance id for display; album commands accept the prefix.
func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
