package game

// DiceResult is a finished roll of two dice per side
type DiceResult struct {
	Player    [2]int `json:"player"`
	House     [2]int `json:"house"`
	PlayerSum int    `json:"player_sum"`
	HouseSum  int    `json:"house_sum"`
	Win       int64  `json:"win"`
}

func rollDie(src Source) int {
	return src.IntN(6) + 1
}

// RollDice rolls the player's pair first, then the house's
func RollDice(src Source, bet int64) DiceResult {
	r := DiceResult{
		Player: [2]int{rollDie(src), rollDie(src)},
		House:  [2]int{rollDie(src), rollDie(src)},
	}
	r.PlayerSum = r.Player[0] + r.Player[1]
	r.HouseSum = r.House[0] + r.House[1]
	r.Win = DicePayout(r.PlayerSum, r.HouseSum, bet)
	return r
}

// DicePayout doubles a higher sum and returns the stake on a tie
func DicePayout(playerSum, houseSum int, bet int64) int64 {
	switch {
	case playerSum > houseSum:
		return bet * 2
	case playerSum == houseSum:
		return bet
	default:
		return 0
	}
}
