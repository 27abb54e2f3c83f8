package emulation

import "github.com/alexunderch/PufferLib/space"

// PadAgentData returns a mapping over exactly agents: present entries are
// kept and missing ones get pad.
func PadAgentData[T any](data map[string]T, agents []string, pad T) map[string]T {
	out := make(map[string]T, len(agents))
	for _, a := range agents {
		if v, ok := data[a]; ok {
			out[a] = v
		} else {
			out[a] = pad
		}
	}
	return out
}

// PadToConstNumAgents pads one step's outputs to the full roster. Missing
// agents get padObs, reward 0, done false and an empty info of their own.
func PadToConstNumAgents(
	agents []string,
	obs map[string]space.Array,
	rewards map[string]float64,
	dones map[string]bool,
	infos map[string]Info,
	padObs space.Array,
) (map[string]space.Array, map[string]float64, map[string]bool, map[string]Info) {
	paddedInfos := make(map[string]Info, len(agents))
	for _, a := range agents {
		if info, ok := infos[a]; ok {
			paddedInfos[a] = info
		} else {
			paddedInfos[a] = Info{}
		}
	}
	return PadAgentData(obs, agents, padObs),
		PadAgentData(rewards, agents, 0),
		PadAgentData(dones, agents, false),
		paddedInfos
}
