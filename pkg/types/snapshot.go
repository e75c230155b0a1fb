package types

// state (also the persisted format under "impostor-game-state-v1"):
//   screen: "home" | "setup" | "deal" | "round" | "reveal"
//   playerCount: number
//   players: { name: string, color: string }[]
//   language: "es" | "en"
//   gameMode: "word" | "draw"
//   drawAllowColorPick, drawLimitStrokes: boolean
//   word, wordHint: string
//   hintsEnabled: boolean
//   categoryMode: "all" | "custom"
//   selectedCategories: string[]
//   timerEnabled: boolean
//   timerSeconds: number
//   allowMultipleImpostors: boolean
//   impostorCount: number
//   impostorIndices: number[]
//   dealOrder: number[]
//   dealStep: number
//   showRole, revealImpostor: boolean
//   alivePlayers: number[]
//   winner: "innocents" | "impostor" | null
//   lastVote: null
//     | { status: "correct", name, index, color, remainingImpostors }
//     | { status: "wrong", name, index, color, remainingInnocents }
//     | { status: "tie", indices: number[], names: string[] }
//   voteMode: "public" | "secret"
//   secretVoteOrder: number[]
//   secretVoteStep: number
//   secretVotes: { voter: number, target: number }[]
//   tieCandidates: number[]
//
// Older saves may carry impostorIndex (a single number) instead of
// impostorIndices; it is migrated on load.
