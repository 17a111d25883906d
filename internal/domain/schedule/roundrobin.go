package schedule

// Bye is the placeholder padded onto odd-sized team lists. Pairs containing it are dropped.
const Bye = "__BYE__"

// Pair is one team-vs-team meeting. TeamA is the home side.
type Pair struct {
	TeamA string
	TeamB string
}

// Round is the set of meetings played in one week.
type Round []Pair

// RoundRobin builds a circle-method schedule for the given team order.
// The first team stays fixed while the rest rotate one position per round,
// and home/away is flipped on odd rounds. Callers sort teams into a canonical
// order so regeneration is reproducible. Fewer than two teams yields nil.
func RoundRobin(teamIDs []string) []Round {
	if len(teamIDs) < 2 {
		return nil
	}

	arr := make([]string, 0, len(teamIDs)+1)
	arr = append(arr, teamIDs...)
	if len(arr)%2 == 1 {
		arr = append(arr, Bye)
	}

	n := len(arr)
	half := n / 2
	rounds := make([]Round, 0, n-1)
	for r := 0; r < n-1; r++ {
		round := make(Round, 0, half)
		for i := 0; i < half; i++ {
			a, b := arr[i], arr[n-1-i]
			if a == Bye || b == Bye {
				continue
			}
			if r%2 == 0 {
				round = append(round, Pair{TeamA: a, TeamB: b})
			} else {
				round = append(round, Pair{TeamA: b, TeamB: a})
			}
		}
		rounds = append(rounds, round)
		rotate(arr)
	}

	return rounds
}

// RoundCount reports how many rounds RoundRobin produces for n teams.
func RoundCount(n int) int {
	if n < 2 {
		return 0
	}
	if n%2 == 1 {
		n++
	}
	return n - 1
}

// rotate keeps arr[0] in place and moves the last element to position 1.
func rotate(arr []string) {
	if len(arr) < 3 {
		return
	}
	last := arr[len(arr)-1]
	copy(arr[2:], arr[1:len(arr)-1])
	arr[1] = last
}
