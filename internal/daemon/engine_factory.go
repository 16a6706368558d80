// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package daemon

import (
	"time"

	"grimm.is/flywall/internal/config"
	"grimm.is/flywall/internal/errors"
	"grimm.is/flywall/internal/protocol"
	"grimm.is/flywall/internal/protocol/ecmp"
	"grimm.is/flywall/internal/protocol/ospf"
	"grimm.is/flywall/internal/protocol/queueaware"
	"grimm.is/flywall/internal/protocol/rip"
	"grimm.is/flywall/internal/protocol/spath"
	"grimm.is/flywall/internal/protocol/topk"
	"grimm.is/flywall/internal/strategy"
)

func durationMs(params map[string]interface{}, key string, def time.Duration) time.Duration {
	if v, ok := params[key]; ok {
		if f, ok := asFloat(v); ok {
			return time.Duration(f * float64(time.Millisecond))
		}
	}
	return def
}

func floatParam(params map[string]interface{}, key string, def float64) float64 {
	if v, ok := params[key]; ok {
		if f, ok := asFloat(v); ok {
			return f
		}
	}
	return def
}

func intParam(params map[string]interface{}, key string, def int) int {
	if v, ok := params[key]; ok {
		if f, ok := asFloat(v); ok {
			return int(f)
		}
	}
	return def
}

func boolParam(params map[string]interface{}, key string, def bool) bool {
	if v, ok := params[key]; ok {
		if b, ok := v.(bool); ok {
			return b
		}
	}
	return def
}

func asFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	return 0, false
}

// newEngine builds the configured protocol engine by name. params is
// cfg.ProtocolParams[name], possibly nil.
func newEngine(name string, tick time.Duration, params map[string]interface{}) (protocol.Engine, error) {
	hello := durationMs(params, "hello_interval_ms", tick)
	lsaInterval := durationMs(params, "lsa_interval_ms", 3*tick)
	lsaMaxAge := durationMs(params, "lsa_max_age_ms", 15*tick)
	triggered := durationMs(params, "triggered_min_spacing_ms", tick)

	switch name {
	case "ospf":
		return ospf.New(ospf.Config{
			HelloInterval: hello, LSAInterval: lsaInterval, LSAMaxAge: lsaMaxAge, TriggeredMinSpacing: triggered,
		}), nil

	case "ecmp":
		return ecmp.New(ecmp.Config{
			HelloInterval: hello, LSAInterval: lsaInterval, LSAMaxAge: lsaMaxAge, TriggeredMinSpacing: triggered,
			HashSeed: uint64(intParam(params, "hash_seed", 2026)),
		}), nil

	case "rip":
		return rip.New(rip.Config{
			UpdateInterval:  hello,
			NeighborTimeout: durationMs(params, "neighbor_timeout_ms", 4*tick),
			InfinityMetric:  floatParam(params, "infinity_metric", 16),
			PoisonReverse:   boolParam(params, "poison_reverse", true),
		}), nil

	case "spath":
		algo := strategy.AlgoDijkstra
		switch v, _ := params["algorithm"].(string); v {
		case "ecmp":
			algo = strategy.AlgoECMP
		case "bellman_ford":
			algo = strategy.AlgoBellmanFord
		case "yen_k_shortest":
			algo = strategy.AlgoYenKShortest
		}
		return spath.New(spath.Config{
			HelloInterval: hello, LSAInterval: lsaInterval, LSAMaxAge: lsaMaxAge, TriggeredMinSpacing: triggered,
			Algorithm: algo, YenK: intParam(params, "yen_k", 3), HashSeed: uint64(intParam(params, "hash_seed", 2026)),
		}), nil

	case "topk":
		return topk.New(topk.Config{
			HelloInterval: hello, LSAInterval: lsaInterval, LSAMaxAge: lsaMaxAge, TriggeredMinSpacing: triggered,
			K: intParam(params, "k", 3), SelectionHoldTime: durationMs(params, "selection_hold_time_ms", 30*tick),
			ExploreProbability: floatParam(params, "explore_probability", 0), RNGSeed: uint64(intParam(params, "rng_seed", 1)),
		}), nil

	case "ddr", "dgr", "octopus":
		tun := queueaware.Tunables{
			HelloInterval: hello, LSAInterval: lsaInterval, LSAMaxAge: lsaMaxAge, TriggeredMinSpacing: triggered,
			QueueSampleInterval: durationMs(params, "queue_sample_interval_ms", tick),
			FlowSizeBytes:       floatParam(params, "flow_size_bytes", 64_000),
			LinkBandwidthBps:    floatParam(params, "link_bandwidth_bps", 9_600_000),
			RNGSeed:             uint64(intParam(params, "rng_seed", 1)),
		}
		switch name {
		case "ddr":
			return queueaware.NewDDR(tun), nil
		case "dgr":
			return queueaware.NewDGR(tun), nil
		default:
			return queueaware.NewOctopus(tun), nil
		}

	default:
		return nil, errors.Errorf(errors.KindInvalidConfig, "unrecognized protocol %q", name)
	}
}

// protocolParamsFor returns cfg.ProtocolParams[name], or nil.
func protocolParamsFor(cfg *config.Config, name string) map[string]interface{} {
	if cfg.ProtocolParams == nil {
		return nil
	}
	return cfg.ProtocolParams[name]
}

// NewProtocolEngine builds the engine named by cfg.Protocol, passing it
// cfg.ProtocolParams[cfg.Protocol] and a tick interval derived from
// cfg.Timers.
func NewProtocolEngine(cfg *config.Config) (protocol.Engine, error) {
	tick := time.Duration(cfg.Timers.TickIntervalMs) * time.Millisecond
	return newEngine(cfg.Protocol, tick, protocolParamsFor(cfg, cfg.Protocol))
}
