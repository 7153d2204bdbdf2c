package audio

// Presets returns the built-in track registry. IDs are stable; the actual
// media URLs are resolved by the Output implementation.
func Presets() []Track {
	return []Track{
		{ID: "tavern_ambience", Name: "Tavern ambience", Category: CategoryBGM, Loop: true, Gain: 0.3},
		{ID: "dungeon_exploration", Name: "Dungeon exploration", Category: CategoryBGM, Loop: true, Gain: 0.4},
		{ID: "battle_theme", Name: "Battle theme", Category: CategoryBGM, Loop: true, Gain: 0.6},
		{ID: "peaceful_village", Name: "Peaceful village", Category: CategoryBGM, Loop: true, Gain: 0.3},
		{ID: "mysterious_forest", Name: "Mysterious forest", Category: CategoryBGM, Loop: true, Gain: 0.4},

		{ID: "dice_roll", Name: "Dice roll", Category: CategorySE, Gain: 0.6},
		{ID: "sword_clang", Name: "Sword clang", Category: CategorySE, Gain: 0.7},
		{ID: "magic_cast", Name: "Magic cast", Category: CategorySE, Gain: 0.5},
		{ID: "treasure_found", Name: "Treasure found", Category: CategorySE, Gain: 0.8},
		{ID: "door_open", Name: "Door open", Category: CategorySE, Gain: 0.5},
		{ID: "footsteps", Name: "Footsteps", Category: CategorySE, Gain: 0.4},
		{ID: "notification", Name: "Notification", Category: CategorySE, Gain: 0.6},
		{ID: "critical_hit", Name: "Critical hit", Category: CategorySE, Gain: 0.8},
		{ID: "healing", Name: "Healing", Category: CategorySE, Gain: 0.7},

		{ID: "gm_narration", Name: "GM narration", Category: CategoryVoice, Gain: 0.9},
	}
}
