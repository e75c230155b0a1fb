package engine

// View is the read model the presentation layer renders from. It is
// derived from a State and never stored.
type View struct {
	CanVote            bool     `json:"canVote"`
	VoteCandidates     []int    `json:"voteCandidates"`
	DealComplete       bool     `json:"dealComplete"`
	CurrentDealPlayer  *Player  `json:"currentDealPlayer,omitempty"`
	CurrentDealIndex   int      `json:"currentDealIndex"`
	CurrentIsImpostor  bool     `json:"currentIsImpostor"`
	VisibleHint        string   `json:"visibleHint,omitempty"`
	SecretVoteActive   bool     `json:"secretVoteActive"`
	CurrentSecretVoter *int     `json:"currentSecretVoter,omitempty"`
	ImpostorsAlive     int      `json:"impostorsAlive"`
	InnocentsAlive     int      `json:"innocentsAlive"`
	Eliminated         []int    `json:"eliminated"`
	Impostors          []Player `json:"impostors,omitempty"`
}

func Derive(s State) View {
	alive := s.AliveOrAll()

	v := View{
		CanVote:          CanVote(s),
		VoteCandidates:   cloneOrEmpty(VoteCandidates(s)),
		DealComplete:     s.DealComplete(),
		CurrentDealIndex: -1,
		SecretVoteActive: s.SecretVoteActive(),
		Eliminated:       []int{},
	}

	if s.DealStep < len(s.DealOrder) {
		idx := s.DealOrder[s.DealStep]
		p := PlayerDisplay(s, idx)
		v.CurrentDealIndex = idx
		v.CurrentDealPlayer = &p
		v.CurrentIsImpostor = s.IsImpostor(idx)
	}

	if s.HintsEnabled {
		v.VisibleHint = s.WordHint
	}

	if v.SecretVoteActive {
		voter := s.SecretVoteOrder[s.SecretVoteStep]
		v.CurrentSecretVoter = &voter
	}

	for _, id := range s.ImpostorIndices {
		if containsInt(alive, id) {
			v.ImpostorsAlive++
		}
	}
	v.InnocentsAlive = len(alive) - v.ImpostorsAlive

	for i := range s.Players {
		if !containsInt(alive, i) {
			v.Eliminated = append(v.Eliminated, i)
		}
	}

	// Identities are only disclosed once the game is over or revealed.
	if s.IsDecided() || s.RevealImpostor {
		for _, id := range s.ImpostorIndices {
			v.Impostors = append(v.Impostors, PlayerDisplay(s, id))
		}
	}

	return v
}
