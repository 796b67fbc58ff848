package main

import (
	"encoding/json"
	"fmt"

	rete "github.com/nimbit-software/rete-engine"
)

// reteplay is a small worked example, in the shape of the teacher's
// cmd/main.go: a JSON rule document, a couple of declared facts, and a
// run to completion — rebuilt against this package's Engine/RuleDocument
// API instead of the teacher's boolean condition tree.
func main() {
	ruleRaw := []byte(`{
		"name": "fouledOut",
		"salience": 10,
		"patterns": [
			{
				"fact": "Player",
				"constraints": [
					{"field": "personalFoulCount", "operator": ">", "value": 5}
				],
				"bind": {"?name": "name"}
			}
		],
		"event": {
			"type": "fouledOut",
			"params": {"message": "player has fouled out"}
		}
	}`)

	doc, err := rete.ParseRuleDocument(ruleRaw)
	if err != nil {
		panic(err)
	}

	engine := rete.NewEngine(rete.DefaultEngineOptions())

	cfg, err := doc.Compile(func(facts []*rete.Fact, env map[string]rete.Value) error {
		name, _ := facts[0].Field("name")
		fmt.Printf("%s: %s\n", doc.Event.Params["message"], name.Raw())
		return nil
	})
	if err != nil {
		panic(err)
	}
	if err := engine.RegisterRule(cfg); err != nil {
		panic(err)
	}

	players := []map[string]interface{}{
		{"name": "Jones", "personalFoulCount": 6},
		{"name": "Smith", "personalFoulCount": 2},
	}
	for _, p := range players {
		raw, err := json.Marshal(p)
		if err != nil {
			panic(err)
		}
		if _, err := engine.Declare("Player", raw); err != nil {
			panic(err)
		}
	}

	fired, err := engine.Run(0)
	if err != nil {
		panic(err)
	}
	fmt.Printf("fired %d activation(s)\n", fired)
}
