package engine

type VoteStatus string

const (
	VoteCorrect VoteStatus = "correct"
	VoteWrong   VoteStatus = "wrong"
	VoteTie     VoteStatus = "tie"
)

// VoteOutcome is the result of the last resolved ballot. A nil
// VoteOutcome means no vote has been resolved yet.
type VoteOutcome interface {
	Status() VoteStatus
}

// CorrectVote: the accused was an impostor.
type CorrectVote struct {
	Name               string
	Index              int
	Color              string
	RemainingImpostors int
}

// WrongVote: the accused was innocent and is eliminated anyway.
type WrongVote struct {
	Name               string
	Index              int
	Color              string
	RemainingInnocents int
}

// TieVote: a secret ballot ended with several players sharing the top count.
type TieVote struct {
	Indices []int
	Names   []string
}

func (CorrectVote) Status() VoteStatus { return VoteCorrect }
func (WrongVote) Status() VoteStatus   { return VoteWrong }
func (TieVote) Status() VoteStatus     { return VoteTie }

// resolveVote eliminates target and scores the elimination. It returns
// the input state and false when the vote cannot be applied.
func resolveVote(s State, target int) (State, bool) {
	if !CanVote(s) || !s.IsAlive(target) {
		return s, false
	}

	who := PlayerDisplay(s, target)
	remaining := withoutInt(s.AliveOrAll(), target)

	impostorsAlive := 0
	for _, id := range s.ImpostorIndices {
		if containsInt(remaining, id) {
			impostorsAlive++
		}
	}
	innocentsAlive := len(remaining) - impostorsAlive

	next := s
	next.AlivePlayers = remaining

	if s.IsImpostor(target) {
		next.Winner = WinnerNone
		if impostorsAlive == 0 {
			next.Winner = WinnerInnocents
		}
		allImpostors := len(s.ImpostorIndices) == len(s.Players)
		if allImpostors && len(remaining) <= MinPlayersForImpostorWin {
			next.Winner = WinnerImpostor
		}
		next.LastVote = CorrectVote{
			Name:               who.Name,
			Index:              target,
			Color:              who.Color,
			RemainingImpostors: impostorsAlive,
		}
		return next, true
	}

	next.Winner = WinnerNone
	if impostorsAlive > 0 && len(remaining) <= MinPlayersForImpostorWin {
		next.Winner = WinnerImpostor
	}
	next.LastVote = WrongVote{
		Name:               who.Name,
		Index:              target,
		Color:              who.Color,
		RemainingInnocents: innocentsAlive,
	}
	return next, true
}

// tallyTopTargets counts votes per target and returns every target that
// reached the maximum, in first-vote order.
func tallyTopTargets(votes []SecretVote) []int {
	counts := make(map[int]int, len(votes))
	order := make([]int, 0, len(votes))
	for _, v := range votes {
		if _, seen := counts[v.Target]; !seen {
			order = append(order, v.Target)
		}
		counts[v.Target]++
	}

	maxVotes := 0
	for _, c := range counts {
		if c > maxVotes {
			maxVotes = c
		}
	}

	top := make([]int, 0, len(order))
	for _, target := range order {
		if counts[target] == maxVotes {
			top = append(top, target)
		}
	}
	return top
}

func clearSecretVote(s State) State {
	s.SecretVoteOrder = []int{}
	s.SecretVoteStep = 0
	s.SecretVotes = []SecretVote{}
	return s
}
