package benchmarks_test

import (
	"encoding/json"
	"testing"
	"time"

	faker "github.com/go-faker/faker/v4"
	rete "github.com/nimbit-software/rete-engine"
)

func generateBasicTestData(n int) [][]byte {
	testData := make([][]byte, 0, n)
	for i := 0; i < n; i++ {
		raw, err := json.Marshal(map[string]interface{}{
			"personalFoulCount": i % 12,
			"gameDuration":      30 + i%90,
		})
		if err != nil {
			continue
		}
		testData = append(testData, raw)
	}
	return testData
}

// BenchmarkRuleEngineBasic runs a single-pattern rule against a stream
// of declare+run cycles, mirroring the teacher's BenchmarkRuleEngineBasic
// (benchmark_test.go) against this package's incremental Engine.
func BenchmarkRuleEngineBasic(b *testing.B) {
	engine := rete.NewEngine(rete.DefaultEngineOptions())
	err := engine.RegisterRule(rete.RuleConfig{
		Name: "fouled-out",
		Patterns: []rete.PatternIR{{
			FactType:    "Player",
			Constraints: []rete.Constraint{{Field: "personalFoulCount", Op: rete.OpGt, Literal: rete.Value{Kind: rete.KindNumber, N: 5}}},
		}},
		Action: func(facts []*rete.Fact, env map[string]rete.Value) error { return nil },
	})
	if err != nil {
		b.Fatalf("registering rule: %v", err)
	}

	testData := generateBasicTestData(b.N)

	b.ResetTimer()
	start := time.Now()
	for i := 0; i < b.N; i++ {
		raw := testData[i%len(testData)]
		id, err := engine.Declare("Player", raw)
		if err != nil {
			b.Fatalf("declare failed: %v", err)
		}
		if _, err := engine.Run(0); err != nil {
			b.Fatalf("run failed: %v", err)
		}
		if err := engine.Retract(id); err != nil {
			b.Fatalf("retract failed: %v", err)
		}
	}
	elapsed := time.Since(start)
	b.Logf("BenchmarkRuleEngineBasic took %s for %d iterations", elapsed, b.N)
}

// BenchmarkRuleEngineFaker exercises field access through gjson with
// faker-generated string data, rather than pure numeric facts.
func BenchmarkRuleEngineFaker(b *testing.B) {
	engine := rete.NewEngine(rete.DefaultEngineOptions())
	err := engine.RegisterRule(rete.RuleConfig{
		Name: "named-player",
		Patterns: []rete.PatternIR{{
			FactType:    "Player",
			Constraints: []rete.Constraint{{Field: "gameDuration", Op: rete.OpGt, Literal: rete.Value{Kind: rete.KindNumber, N: 40}}},
			Bindings:    []rete.Binding{{Field: "lastName", Var: "?name"}},
		}},
		Action: func(facts []*rete.Fact, env map[string]rete.Value) error { return nil },
	})
	if err != nil {
		b.Fatalf("registering rule: %v", err)
	}

	raws := make([][]byte, b.N)
	for i := range raws {
		raw, err := json.Marshal(map[string]interface{}{
			"lastName":     faker.LastName(),
			"gameDuration": 30 + i%90,
		})
		if err != nil {
			b.Fatalf("marshal: %v", err)
		}
		raws[i] = raw
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := engine.Declare("Player", raws[i]); err != nil {
			b.Fatalf("declare failed: %v", err)
		}
	}
	if _, err := engine.Run(0); err != nil {
		b.Fatalf("run failed: %v", err)
	}
}
