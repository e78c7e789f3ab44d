package story

import "github.com/jwebster45206/verdant-hollow/pkg/player"

// Stage markers written by the scripted path.
const (
	StageGoblinFight   = "goblin_fight"
	StageHumanTalk     = "human_talk"
	StageHumanFight    = "human_fight"
	StageDragonFight   = "dragon_fight"
	StageDragonTalk    = "dragon_talk"
	StageHutEnter      = "hut_enter"
	StagePotionDrink   = "potion_drink"
	StageLadderNoClimb = "ladder_no_climb"
	StageExcaliburPull = "excalibur_pull"
	StageDoorEnter     = "door_enter"
	StageMonsterWin    = "monster_win"
	StageGameOver      = "game_over"
	StageEncounter     = "encounter"
	StageEncounterDone = "encounter_done"
	StageRetired       = "retired"
)

const introPrompt = "Hello young adventurer, do you accept to take on one of the most fearsome adventures of your life?"

var (
	allStats = []player.Stat{player.Strength, player.Luck, player.Agility}
	yesKeys  = []string{"1", "yes", "y"}
	noKeys   = []string{"2", "no", "n"}
)

func die(text string) Branch {
	return Branch{Text: text, Next: NodeDead, Kill: true}
}

func terminals(ids ...NodeID) []Node {
	prompts := map[NodeID]string{
		NodeDead:       "You are dead. Game Over!",
		NodeVictory:    "Your legend will be sung across Verdant Hollow.",
		NodeWalkedAway: "Thanks for playing! Goodbye!",
		NodeRetired:    "You head home with your treasures.",
	}
	out := make([]Node, 0, len(ids))
	for _, id := range ids {
		out = append(out, Node{ID: id, Kind: KindTerminal, Prompt: prompts[id]})
	}
	return out
}

// ScriptedNodes returns the hand-written adventure from the forest to the
// monster in the other dimension.
func ScriptedNodes() []Node {
	nodes := []Node{
		{
			ID: NodeIntro, Kind: KindChoice, Prompt: introPrompt,
			Edges: []Edge{
				{Keys: yesKeys, Label: "Yes", Success: Branch{Next: NodeForest}},
				{Keys: noKeys, Label: "No", Success: Branch{
					Text: "You walk away from the adventure. Maybe next time!",
					Next: NodeWalkedAway,
				}},
			},
		},
		{
			ID: NodeForest, Kind: KindChoice,
			Prompt: "You are in a dark forest. You see a path to the left and a path to the right.",
			Edges: []Edge{
				{Keys: []string{"1", "left", "l"}, Label: "Left", Success: Branch{Next: NodeGoblin, LuckEvent: true}},
				{Keys: []string{"2", "right", "r"}, Label: "Right", Success: die("You chose the wrong path. A dragon burned you. Game Over!")},
			},
		},
		{
			ID: NodeGoblin, Kind: KindChoice, Prompt: "You see a goblin. What do you do?",
			Edges: []Edge{
				{
					Keys: []string{"1", "fight"}, Label: "Fight",
					Checks: []Check{
						{
							Label: "stab", Sides: 10, Stats: []player.Stat{player.Agility}, Bonus: 2, Threshold: 12,
							Fail: die("You try to stab the goblin... The goblin dodged your attack and killed you. Game Over!"),
						},
						{
							Label: "fight", Sides: 10, Stats: []player.Stat{player.Strength, player.Luck}, Threshold: 15,
							Fail: die("You try to stab the goblin... You fought and lost! You died! Game Over!"),
						},
					},
					Success: Branch{
						Text:      "You try to stab the goblin... You fought and won! You get a sword!",
						Next:      NodeHuman,
						Stage:     StageGoblinFight,
						LevelUp:   true,
						SetHealth: 75,
						AddItems:  []string{"sword"},
					},
				},
				{Keys: []string{"2", "run"}, Label: "Run", Success: die("You ran and tripped on a stone. The goblin caught you. Game Over!")},
			},
		},
		{
			ID: NodeHuman, Kind: KindChoice, Prompt: "You see a human. What do you do?",
			Edges: []Edge{
				{Keys: []string{"1", "talk"}, Label: "Talk", Success: Branch{
					Text:       "The human gave you a map to treasure!",
					Next:       NodeDragon,
					Stage:      StageHumanTalk,
					AddItems:   []string{"map"},
					Reputation: 1,
				}},
				{
					Keys: []string{"2", "attack"}, Label: "Attack",
					Checks: []Check{{
						Label: "attack", Sides: 10, Stats: allStats, Threshold: 20,
						Fail: die("You fought and lost! You died! Game Over!"),
					}},
					Success: Branch{
						Text:       "You killed the human and took the map.",
						Next:       NodeDragon,
						Stage:      StageHumanFight,
						LevelUp:    true,
						SetHealth:  50,
						AddItems:   []string{"map"},
						Reputation: -1,
						Corruption: 2,
					},
				},
			},
		},
		{
			ID: NodeDragon, Kind: KindChoice, Prompt: "You see a dragon! What do you do?",
			Edges: []Edge{
				{
					Keys: []string{"1", "fight"}, Label: "Fight",
					Checks: []Check{{
						Label: "fight", Sides: 10, Stats: allStats, Threshold: 30,
						Fail: Branch{
							Text:  "You fought valiantly but the dragon is too powerful. You died. Game Over!",
							Next:  NodeDead,
							Stage: StageGameOver,
							Kill:  true,
						},
					}},
					Success: Branch{
						Text:         "You somehow killed the dragon and took the sword, you also got dragon armour. You also decided to just destroy your other sword.",
						Next:         NodeHut,
						Stage:        StageDragonFight,
						LevelUp:      true,
						SetMaxHealth: 150,
						SetHealth:    150,
						AddItems:     []string{"better sword", "Dragon armour"},
					},
				},
				{Keys: []string{"2", "talk"}, Label: "Talk", Success: Branch{
					Text:       "The dragon gave you a better sword and you decided to leave your other sword.",
					Next:       NodeHut,
					Stage:      StageDragonTalk,
					AddItems:   []string{"better sword"},
					Reputation: 1,
				}},
			},
		},
		{
			ID: NodeHut, Kind: KindChoice,
			Prompt: "You go deeper in the forest and find a hut in the middle of the forest. What do you do?",
			Edges: []Edge{
				{Keys: []string{"1", "enter"}, Label: "Enter the hut", Success: Branch{
					Text:      "There was a trap and you fall down but you barely survive. You find a potion.",
					Next:      NodePotion,
					Stage:     StageHutEnter,
					SetHealth: 10,
					AddItems:  []string{"potion"},
				}},
				{Keys: []string{"2", "destroy"}, Label: "Destroy the hut", Success: Branch{
					Text:       "The hut literally fights back and swallows you, killing you.",
					Next:       NodeDead,
					Kill:       true,
					Corruption: 1,
				}},
			},
		},
		{
			ID: NodePotion, Kind: KindChoice, Prompt: "Do you drink the potion?",
			Edges: []Edge{
				{Keys: yesKeys, Label: "Yes", Success: Branch{
					Text:        "You drank the potion and gained health.",
					Next:        NodeLadder,
					Stage:       StagePotionDrink,
					SetHealth:   100,
					RemoveItems: []string{"potion"},
				}},
				{Keys: noKeys, Label: "No", Success: die("You did not drink the potion and tripped on your imaginary shoelace.")},
			},
		},
		{
			ID: NodeLadder, Kind: KindChoice, Prompt: "You found a ladder. Do you climb it?",
			Edges: []Edge{
				{Keys: yesKeys, Label: "Yes", Success: die("You climbed the ladder but a monster chopped off your head. Game Over!")},
				{Keys: noKeys, Label: "No", Success: Branch{
					Text:  "You didn't climb the ladder and found the stone where the legendary excalibur was.",
					Next:  NodeExcalibur,
					Stage: StageLadderNoClimb,
				}},
			},
		},
		{
			ID: NodeExcalibur, Kind: KindChoice, Prompt: "Do you pull the sword from the stone?",
			Edges: []Edge{
				{Keys: yesKeys, Label: "Yes", Success: Branch{
					Text:     "You pulled the sword and it was the legendary Excalibur, and let go of your 'better sword'. Also, a mysterious door opened in front of you.",
					Next:     NodeDoor,
					Stage:    StageExcaliburPull,
					AddItems: []string{"excalibur"},
				}},
				{Keys: noKeys, Label: "No", Success: die("You did not pull the sword and the stone collapsed on you. Game Over!")},
			},
		},
		{
			ID: NodeDoor, Kind: KindChoice, Prompt: "Do you go through the door?",
			Edges: []Edge{
				{Keys: yesKeys, Label: "Yes", Success: Branch{
					Text: "You went in the door and found the treasure. Then the treasure chest opens up by itself and it surrounds you in a mist, " +
						"carrying you to another dimension where everything seems like hell, but you are alive.",
					Next:     NodeMonster,
					Stage:    StageDoorEnter,
					AddItems: []string{"Fake, trap treasure chest"},
				}},
				{Keys: noKeys, Label: "No", Success: die("You did not go in the door and stayed in the cave forever, dying of starvation.")},
			},
		},
		{
			ID: NodeMonster, Kind: KindChoice,
			Prompt: "As you wake up from that dimension, you find 1 monster, a very powerful one. Do you fight it?",
			Edges: []Edge{
				{
					Keys: yesKeys, Label: "Yes",
					Checks: []Check{{
						Label: "fight", Min: 20, Max: 30, Stats: allStats, Threshold: 50,
						Fail: die("You try to fight the monster... The monster did some horrendous things to you. Game Over!"),
					}},
					Success: Branch{
						Text:     "You try to fight the monster... You won!? AND NOW YOU GOT AN ENCHANTMENT ON YOUR EXCALIBUR! BRAVO!",
						Next:     NodeVictory,
						Stage:    StageMonsterWin,
						LevelUp:  true,
						AddItems: []string{"enchanted excalibur"},
					},
				},
				{Keys: noKeys, Label: "No", Success: die("You ran away but the monster caught you. Game Over!")},
			},
		},
	}
	return append(nodes, terminals(NodeDead, NodeVictory, NodeWalkedAway)...)
}

// DynamicNodes returns the generated-encounter adventure: accept, then
// encounters until death, retirement or the encounter limit.
func DynamicNodes() []Node {
	nodes := []Node{
		{
			ID: NodeIntro, Kind: KindChoice, Prompt: introPrompt,
			Edges: []Edge{
				{Keys: yesKeys, Label: "Yes", Success: Branch{Next: NodeEncounter, Stage: StageEncounter}},
				{Keys: noKeys, Label: "No", Success: Branch{
					Text: "You walk away from the adventure. Maybe next time!",
					Next: NodeWalkedAway,
				}},
			},
		},
		{ID: NodeEncounter, Kind: KindEncounter},
		{ID: NodeBattle, Kind: KindBattle},
		{
			ID: NodeContinue, Kind: KindChoice, Prompt: "Continue deeper into the forest?",
			Stage: StageEncounterDone,
			Edges: []Edge{
				{Keys: yesKeys, Label: "Yes", Success: Branch{Next: NodeEncounter, Stage: StageEncounter}},
				{Keys: noKeys, Label: "No", Success: Branch{
					Text:  "You decide to rest and end your adventure here. Well done!",
					Next:  NodeRetired,
					Stage: StageRetired,
				}},
			},
		},
	}
	nodes = append(nodes, terminals(NodeDead, NodeWalkedAway, NodeRetired)...)
	for i := range nodes {
		if nodes[i].ID == NodeRetired {
			nodes[i].Stage = StageRetired
		}
	}
	return nodes
}

// ScriptedGraph builds the validated scripted graph.
func ScriptedGraph() (*Graph, error) {
	return NewGraph(NodeIntro, ScriptedNodes())
}

// DynamicGraph builds the validated generated-encounter graph.
func DynamicGraph() (*Graph, error) {
	return NewGraph(NodeIntro, DynamicNodes())
}
