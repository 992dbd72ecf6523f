package drill

import (
	"crypto/rand"
	"math/big"
	"strconv"

	"github.com/google/uuid"
)

const maxPriority = 100

// plan builds n prompts with unique target keys so concurrent presses never
// land on another worker's prompt.
func plan(n, owners int) []Prompt {
	if owners < 1 {
		owners = 1
	}
	prompts := make([]Prompt, n)
	for i := range prompts {
		prompts[i] = Prompt{
			Identifier: "drill-" + strconv.Itoa(i),
			Owner:      "drill-owner-" + strconv.Itoa(i%owners),
			Priority:   randomInt(maxPriority),
			Key:        "k-" + uuid.NewString(),
			PressID:    uuid.NewString(),
			Action:     Action(randomInt(int(actionCount))),
		}
	}
	return prompts
}

func randomInt(n int) int {
	v, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		return 0
	}
	return int(v.Int64())
}

// count tallies prompts by action.
func count(prompts []Prompt) map[Action]int {
	out := make(map[Action]int, int(actionCount))
	for _, p := range prompts {
		out[p.Action]++
	}
	return out
}
