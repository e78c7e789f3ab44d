package story

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jwebster45206/verdant-hollow/pkg/combat"
	"github.com/jwebster45206/verdant-hollow/pkg/dice"
	"github.com/jwebster45206/verdant-hollow/pkg/encounter"
	"github.com/jwebster45206/verdant-hollow/pkg/outcome"
	"github.com/jwebster45206/verdant-hollow/pkg/player"
	"github.com/jwebster45206/verdant-hollow/pkg/storage"
)

// ErrSessionEnded is returned when input arrives after a terminal node.
var ErrSessionEnded = errors.New("session has ended")

// Mode selects which graph a game runs.
type Mode string

const (
	ModeScripted Mode = "scripted"
	ModeDynamic  Mode = "dynamic"
)

// ParseMode reads a mode name; anything unrecognised is scripted.
func ParseMode(s string) Mode {
	if Mode(strings.ToLower(strings.TrimSpace(s))) == ModeDynamic {
		return ModeDynamic
	}
	return ModeScripted
}

const (
	// DefaultMaxEncounters ends a dynamic run after this many encounters.
	DefaultMaxEncounters = 10
	// ActCommand prefixes a free-text action at an encounter.
	ActCommand = "/act "
	// TrainCommand spends a stat point, e.g. "/train luck".
	TrainCommand = "/train "

	trapDamage     = 10
	treasurePoints = 10
)

// Options configures a Game. Zero values get working defaults except
// Generator, which is required in dynamic mode.
type Options struct {
	Mode          Mode
	MaxEncounters int
	Roller        *dice.Roller
	Generator     encounter.Generator
	Bestiary      *combat.Bestiary
	Storage       storage.Storage
	Logger        *slog.Logger
	Now           func() time.Time
}

// Game runs sessions over one graph. It holds no per-player state and is
// safe to share between sessions.
type Game struct {
	graph         *Graph
	mode          Mode
	maxEncounters int
	roller        *dice.Roller
	executor      *outcome.Executor
	generator     encounter.Generator
	bestiary      *combat.Bestiary
	store         storage.Storage
	logger        *slog.Logger
	now           func() time.Time
}

// New builds a game for the configured mode.
func New(opts Options) (*Game, error) {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Roller == nil {
		opts.Roller = dice.NewRoller(nil)
	}
	if opts.MaxEncounters <= 0 {
		opts.MaxEncounters = DefaultMaxEncounters
	}
	if opts.Bestiary == nil {
		opts.Bestiary = combat.DefaultBestiary()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	var (
		graph *Graph
		err   error
	)
	switch opts.Mode {
	case ModeDynamic:
		if opts.Generator == nil {
			return nil, fmt.Errorf("dynamic mode requires an encounter generator")
		}
		graph, err = DynamicGraph()
	default:
		opts.Mode = ModeScripted
		graph, err = ScriptedGraph()
	}
	if err != nil {
		return nil, fmt.Errorf("failed to build story graph: %w", err)
	}

	return &Game{
		graph:         graph,
		mode:          opts.Mode,
		maxEncounters: opts.MaxEncounters,
		roller:        opts.Roller,
		executor:      outcome.NewExecutor(opts.Roller, opts.Logger),
		generator:     opts.Generator,
		bestiary:      opts.Bestiary,
		store:         opts.Storage,
		logger:        opts.Logger,
		now:           opts.Now,
	}, nil
}

func (g *Game) Graph() *Graph { return g.graph }
func (g *Game) Mode() Mode    { return g.mode }

// View is what a front-end shows after a turn.
type View struct {
	SessionID uuid.UUID     `json:"session_id"`
	Node      NodeID        `json:"node"`
	Stage     string        `json:"stage,omitempty"`
	Lines     []string      `json:"lines"`
	Prompt    string        `json:"prompt"`
	Choices   []string      `json:"choices,omitempty"`
	Invalid   bool          `json:"invalid,omitempty"`
	Ended     bool          `json:"ended"`
	Points    int           `json:"points"`
	Player    player.Player `json:"player"`
}

// Start loads the player's save or begins a new run. Storage failures and
// missing saves both fall back to a fresh player.
func (g *Game) Start(ctx context.Context, name string) (*Session, View) {
	name = strings.TrimSpace(name)
	if name == "" {
		name = player.DefaultName
	}

	var lines []string
	s := g.restore(ctx, name, &lines)
	if s == nil {
		s = NewSession(player.New(name), g.graph.Start())
		lines = append(lines, fmt.Sprintf("Welcome %s to Verdant Hollow!", s.Player.Name))
		lines = append(lines, statLines(s.Player)...)
	}

	if s.Player.DailyEvent(g.now()) {
		lines = append(lines, "A day has passed. The darkness creeps closer... (+1 corruption)")
	}

	g.enter(ctx, s, &lines)
	s.log(lines...)
	return s, g.View(s, lines)
}

func (g *Game) restore(ctx context.Context, name string, lines *[]string) *Session {
	if g.store == nil {
		return nil
	}
	rec, err := g.store.LoadGame(ctx, name)
	if err != nil {
		g.logger.Warn("Failed to load save, starting fresh", "player", name, "error", err)
		return nil
	}
	if rec == nil {
		return nil
	}

	p := rec.Restore()
	node := g.graph.Resume(rec.Stage)
	if n, ok := g.graph.Node(node); !ok || n.Terminal() || !p.IsAlive() {
		g.logger.Info("Previous run ended, starting a new one", "player", name, "stage", rec.Stage)
		fresh := carryOver(p)
		s := NewSession(fresh, g.graph.Start())
		if rec.ID != uuid.Nil {
			s.ID = rec.ID
		}
		*lines = append(*lines,
			fmt.Sprintf("Welcome back, %s. Your last adventure is over; a new one begins.", fresh.Name))
		*lines = append(*lines, statLines(fresh)...)
		return s
	}

	s := NewSession(p, node)
	if rec.ID != uuid.Nil {
		s.ID = rec.ID
	}
	s.Points = rec.Points
	s.Stage = rec.Stage
	s.History = append([]string{}, rec.StoryHistory...)
	s.EncounterCount = rec.EncounterCount
	s.Resumed = true
	g.logger.Info("Resumed saved game", "player", name, "stage", rec.Stage, "node", node)
	*lines = append(*lines, fmt.Sprintf("Welcome back, %s. Resuming after %s...", p.Name, strings.ReplaceAll(rec.Stage, "_", " ")))
	return s
}

// carryOver starts a new run for a player whose last run ended, keeping
// what they earned across runs.
func carryOver(prev *player.Player) *player.Player {
	p := player.New(prev.Name)
	p.Strength, p.Agility, p.Luck = prev.Strength, prev.Agility, prev.Luck
	p.Level = max(prev.Level, 1)
	p.StatPoints = prev.StatPoints
	p.MaxStat = max(prev.MaxStat, player.DefaultMaxStat)
	p.HordesUnlocked = prev.HordesUnlocked
	p.AvailableRoles = prev.AvailableRoles
	p.Reputation = prev.Reputation
	p.Corruption = prev.Corruption
	p.LastLogin = prev.LastLogin
	return p
}

func statLines(p *player.Player) []string {
	lines := []string{fmt.Sprintf("Your stats are: Strength %d, Luck %d, Agility %d.", p.Strength, p.Luck, p.Agility)}
	switch {
	case p.Strength >= player.DefaultMaxStat:
		lines = append(lines, "Ah yes, an honor to meet you, the god of strength!")
	case p.Luck >= player.DefaultMaxStat:
		lines = append(lines, "Dang you lucky, probably can find a chest with diamonds.")
	case p.Agility >= player.DefaultMaxStat:
		lines = append(lines, "Nobody in the Hollow runs faster than you.")
	case p.Strength <= 1:
		lines = append(lines, "You are weak, be careful.")
	case p.Luck < 5:
		lines = append(lines, "You would probably die in a 50/50 chance.")
	case p.Agility < 5:
		lines = append(lines, "You are slow, so just don't try to run.")
	}
	return lines
}

// Step consumes one input at the session's current node. Invalid input
// leaves the session where it was and sets View.Invalid.
func (g *Game) Step(ctx context.Context, s *Session, input string) (View, error) {
	node, ok := g.graph.Node(s.Node)
	if !ok {
		return View{}, fmt.Errorf("session %s is at unknown node %q", s.ID, s.Node)
	}
	if node.Terminal() {
		return g.View(s, nil), ErrSessionEnded
	}

	var (
		lines   []string
		invalid bool
	)
	if arg, ok := cutCommand(input, TrainCommand); ok {
		invalid = !g.train(ctx, s, arg, &lines)
		s.log(lines...)
		v := g.View(s, lines)
		v.Invalid = invalid
		return v, nil
	}
	switch node.Kind {
	case KindChoice:
		edge, ok := node.Match(input)
		if !ok {
			invalid = true
			lines = append(lines, "Invalid choice")
			break
		}
		g.take(ctx, s, edge, &lines)
	case KindEncounter:
		g.resolveEncounter(ctx, s, input, &lines)
	case KindBattle:
		invalid = !g.fight(ctx, s, input, &lines)
	}

	s.log(lines...)
	v := g.View(s, lines)
	v.Invalid = invalid
	return v, nil
}

// cutCommand strips a slash command prefix, ignoring case. It reports
// false when the prefix is missing or nothing follows it.
func cutCommand(input, cmd string) (string, bool) {
	input = strings.TrimSpace(input)
	if len(input) < len(cmd) || !strings.EqualFold(input[:len(cmd)], cmd) {
		return "", false
	}
	arg := strings.TrimSpace(input[len(cmd):])
	return arg, arg != ""
}

// train spends one stat point and leaves the session at its node.
func (g *Game) train(ctx context.Context, s *Session, arg string, lines *[]string) bool {
	p := s.Player
	stat, ok := player.ParseStat(arg)
	if !ok {
		*lines = append(*lines, fmt.Sprintf("Unknown stat %q. Train strength, agility or luck.", arg))
		return false
	}
	if !p.SpendStatPoint(stat) {
		if p.StatPoints <= 0 {
			*lines = append(*lines, "You have no stat points to spend.")
		} else {
			*lines = append(*lines, fmt.Sprintf("Your %s is already at its limit of %d.", stat, p.MaxStat))
		}
		return false
	}
	*lines = append(*lines, fmt.Sprintf("You train your %s. It is now %d. Stat points left: %d.",
		stat, p.StatValue(stat), p.StatPoints))
	g.logger.Info("Stat point spent", "player", p.Name, "stat", stat, "remaining", p.StatPoints)
	if s.Stage != "" {
		g.save(ctx, s)
	}
	return true
}

// View renders the session's current node.
func (g *Game) View(s *Session, lines []string) View {
	v := View{
		SessionID: s.ID,
		Node:      s.Node,
		Stage:     s.Stage,
		Lines:     lines,
		Points:    s.Points,
		Player:    *s.Player.Clone(),
	}
	if v.Lines == nil {
		v.Lines = []string{}
	}
	node, ok := g.graph.Node(s.Node)
	if !ok {
		return v
	}
	switch node.Kind {
	case KindEncounter:
		if s.Encounter != nil {
			v.Prompt = s.Encounter.Scene
			v.Choices = append([]string(nil), s.Encounter.Choices...)
		}
	case KindBattle:
		if s.Battle != nil {
			v.Prompt = s.Battle.Describe()
		}
	default:
		v.Prompt = node.Prompt
		v.Choices = node.Choices()
	}
	v.Ended = node.Terminal()
	return v
}

func (g *Game) take(ctx context.Context, s *Session, edge *Edge, lines *[]string) {
	branch := edge.Success
	for _, c := range edge.Checks {
		res := g.check(c, s.Player)
		*lines = append(*lines, fmt.Sprintf("Rolling to %s: %s (need %d)", c.Label, res, c.Threshold))
		if !res.Meets(c.Threshold) {
			branch = c.Fail
			break
		}
	}
	g.apply(ctx, s, branch, lines)
}

func (g *Game) check(c Check, p *player.Player) dice.Result {
	attr := 0
	for _, st := range c.Stats {
		attr += p.StatValue(st)
	}
	var bonus []int
	if c.Bonus != 0 {
		bonus = []int{c.Bonus}
	}
	if c.Max > 0 {
		return g.roller.Range(c.Min, c.Max, attr, bonus...)
	}
	return g.roller.Roll(c.Sides, attr, bonus...)
}

func (g *Game) apply(ctx context.Context, s *Session, b Branch, lines *[]string) {
	p := s.Player
	if b.Text != "" {
		*lines = append(*lines, b.Text)
	}
	if b.LevelUp {
		g.levelUp(s, lines)
	}
	if b.SetMaxHealth > 0 {
		p.SetMaxHealth(b.SetMaxHealth)
	}
	if b.SetHealth > 0 {
		p.SetHealth(b.SetHealth)
	}
	if b.Kill {
		p.SetHealth(0)
	}
	for _, it := range b.RemoveItems {
		p.RemoveItem(it)
	}
	for _, it := range b.AddItems {
		p.AddItem(it)
	}
	p.Reputation += b.Reputation
	p.Corruption += b.Corruption
	if b.LuckEvent {
		g.luckEvent(s, lines)
	}

	s.Node = b.Next
	if !p.IsAlive() {
		s.Node = NodeDead
	}
	if b.Stage != "" {
		s.Stage = b.Stage
	}

	if b.Stage != "" || s.Node == NodeDead {
		g.save(ctx, s)
	}
	g.enter(ctx, s, lines)
}

func (g *Game) levelUp(s *Session, lines *[]string) {
	wasUnlocked := s.Player.HordesUnlocked
	next := player.LevelUp(*s.Player)
	*s.Player = next
	*lines = append(*lines, fmt.Sprintf("Level up! You are now level %d.", next.Level))
	if next.HordesUnlocked && !wasUnlocked {
		*lines = append(*lines, "Hordes now roam the forest.")
	}
	g.logger.Info("Player levelled up", "player", next.Name, "level", next.Level, "roles", next.AvailableRoles)
}

// Luck event weights for treasure, trap and nothing, by luck band.
func luckWeights(luck int) []int {
	switch {
	case luck >= 9:
		return []int{5, 1, 4}
	case luck >= 5:
		return []int{3, 3, 4}
	default:
		return []int{1, 5, 4}
	}
}

func (g *Game) luckEvent(s *Session, lines *[]string) {
	p := s.Player
	switch g.roller.Weighted(luckWeights(p.Luck)) {
	case 0:
		*lines = append(*lines, "You find a mysterious glowing chest... It contains 10 points and a cool hat!")
		p.AddItem("cool hat")
		s.Points += treasurePoints
	case 1:
		*lines = append(*lines, "You stepped on a trap! You lose 10 health.")
		p.Damage(trapDamage)
		if !p.IsAlive() {
			*lines = append(*lines, "You died from the trap. Game Over!")
		}
	default:
		*lines = append(*lines, "Nothing happens. The silence makes it scarier.")
	}
}

// enter prepares the node the session just moved to.
func (g *Game) enter(ctx context.Context, s *Session, lines *[]string) {
	node, ok := g.graph.Node(s.Node)
	if !ok || node.Kind != KindEncounter {
		return
	}
	if s.EncounterCount >= g.maxEncounters {
		g.retire(ctx, s, lines)
		return
	}

	if s.Player.HordesUnlocked && g.roller.Chance(1, 4) {
		battle, err := combat.NewHordeBattle(g.bestiary, g.roller)
		if err == nil {
			s.Battle = battle
			s.Node = NodeBattle
			*lines = append(*lines, "A horde emerges from the trees!")
			return
		}
		g.logger.Error("Failed to start horde battle", "error", err)
	}

	p := s.Player
	enc, err := g.generator.Generate(ctx, encounter.Request{
		Name:         p.Name,
		Strength:     p.Strength,
		Luck:         p.Luck,
		Agility:      p.Agility,
		Inventory:    append([]string(nil), p.Inventory...),
		RecentScenes: append([]string(nil), s.RecentScenes...),
	})
	if err != nil || !enc.Valid() {
		g.logger.Warn("Encounter generation failed, using default encounter", "error", err)
		enc = encounter.Parse("")
		enc.Source = encounter.SourceFallback
	}
	s.Encounter = enc
	s.rememberScene(enc.Scene)
	g.logger.Debug("Encounter ready", "session_id", s.ID, "source", enc.Source, "count", s.EncounterCount)
}

func (g *Game) retire(ctx context.Context, s *Session, lines *[]string) {
	*lines = append(*lines, "You've had many adventures! You decide to head home with your treasures.")
	s.Node = NodeRetired
	s.Stage = StageRetired
	s.Encounter = nil
	g.save(ctx, s)
}

func (g *Game) resolveEncounter(ctx context.Context, s *Session, input string, lines *[]string) {
	if s.Encounter == nil {
		g.enter(ctx, s, lines)
		if s.Encounter == nil {
			return
		}
	}
	enc := s.Encounter
	p := s.Player

	var res outcome.Resolution
	if action, ok := cutCommand(input, ActCommand); ok {
		a := outcome.AnalyzeAction(action, p)
		*lines = append(*lines, fmt.Sprintf("%s action, testing %s. %s", a.Difficulty, a.Stat, a.Prediction))
		res = g.executor.ResolveAction(action, p)
		*lines = append(*lines, outcome.Narrate(p.Name, action, res.Tier))
	} else {
		c := outcome.ParseChoice(input, len(enc.Choices))
		if c.Clamped {
			*lines = append(*lines, "Invalid choice, defaulting to option 1")
		}
		res = g.executor.ResolveChoice(c, p)
		*lines = append(*lines, fmt.Sprintf("You chose: %s", enc.Choices[c.Index]))
	}
	*lines = append(*lines, res.RollText())

	eff := g.executor.Apply(res.Tier, p)
	s.Points += eff.Points
	*lines = append(*lines, outcome.Describe(eff))
	s.Encounter = nil
	g.finishEncounter(ctx, s, lines)
}

// fight plays one battle round and reports whether the input was usable.
func (g *Game) fight(ctx context.Context, s *Session, input string, lines *[]string) bool {
	b := s.Battle
	if b == nil {
		s.Node = NodeEncounter
		g.enter(ctx, s, lines)
		return true
	}
	p := s.Player

	var (
		rr  combat.RoundResult
		err error
	)
	switch in := strings.ToLower(strings.TrimSpace(input)); in {
	case "r", "run":
		rr = b.Flee(p)
	case "p", "potion":
		rr, err = b.Drink(p)
	default:
		idx, perr := outcome.ParseStrict(in, len(b.Enemies))
		if perr != nil {
			*lines = append(*lines, fmt.Sprintf("Invalid choice: %s", perr))
			return false
		}
		rr, err = b.Attack(idx+1, p)
	}
	if err != nil {
		*lines = append(*lines, fmt.Sprintf("Invalid choice: %s", err))
		return false
	}
	*lines = append(*lines, rr.Lines...)

	switch {
	case rr.Dead:
		s.Battle = nil
		s.Node = NodeDead
		g.save(ctx, s)
	case rr.Won:
		s.Battle = nil
		g.levelUp(s, lines)
		g.finishEncounter(ctx, s, lines)
	case rr.Escaped:
		s.Battle = nil
		g.finishEncounter(ctx, s, lines)
	}
	return true
}

func (g *Game) finishEncounter(ctx context.Context, s *Session, lines *[]string) {
	s.EncounterCount++
	s.Stage = StageEncounterDone
	switch {
	case !s.Player.IsAlive():
		*lines = append(*lines, "You died! Game Over!")
		s.Node = NodeDead
		g.save(ctx, s)
	case s.EncounterCount >= g.maxEncounters:
		g.retire(ctx, s, lines)
	default:
		s.Node = NodeContinue
		g.save(ctx, s)
	}
}

// save persists the session. Failures are logged and play continues.
func (g *Game) save(ctx context.Context, s *Session) {
	if g.store == nil {
		return
	}
	var choices []string
	if node, ok := g.graph.Node(s.Node); ok && node.Kind == KindChoice {
		choices = node.Choices()
	} else if s.Encounter != nil {
		choices = s.Encounter.Choices
	}
	if err := g.store.SaveGame(ctx, s.Record(choices)); err != nil {
		g.logger.Warn("Failed to save game", "player", s.Player.Name, "stage", s.Stage, "error", err)
		return
	}
	g.logger.Debug("Game saved", "player", s.Player.Name, "stage", s.Stage)
}
