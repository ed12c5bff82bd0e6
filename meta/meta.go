// meta/meta.go
package meta

// AGENT_KIND defines the default agent for both sides.
const AGENT_KIND = "search"

// DIFFICULTY defines the default difficulty level, a search depth of DIFFICULTY+1 plies.
const DIFFICULTY = 1

// GAMES defines the number of games per experiment match up.
const GAMES = 10

// MAX_TURNS defines the turn limit of a single game.
const MAX_TURNS = 300

// BLIND_MOVE_LIMIT defines the moves without a capture that draw the game.
const BLIND_MOVE_LIMIT = 30

// KING_EDGE_CAPTURE lets the board edge help enclose the king.
const KING_EDGE_CAPTURE = true

const LOG_LEVEL = "info"

// OUTPUT_DIR defines where experiment records are written.
const OUTPUT_DIR = "experiments"

const SEED = 1

// ENV_PREFIX prefixes every environment override.
const ENV_PREFIX = "TABLUT_"
