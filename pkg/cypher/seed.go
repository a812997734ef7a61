package cypher

import (
	"context"
	"fmt"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

// SeedDisease describes one disease with its symptoms and treating drugs in
// the demo graph.
type SeedDisease struct {
	Name     string
	Symptoms []string
	Drugs    []string
}

// DefaultSeedDiseases is a small medical knowledge graph used by the demo
// and the interactive cypher command.
var DefaultSeedDiseases = []SeedDisease{
	{
		Name:     "高血压",
		Symptoms: []string{"头痛", "眩晕", "心悸"},
		Drugs:    []string{"氨氯地平", "缬沙坦"},
	},
	{
		Name:     "2型糖尿病",
		Symptoms: []string{"多饮", "多尿", "体重下降"},
		Drugs:    []string{"二甲双胍", "格列美脲"},
	},
	{
		Name:     "支气管哮喘",
		Symptoms: []string{"喘息", "胸闷", "咳嗽"},
		Drugs:    []string{"沙丁胺醇", "布地奈德"},
	},
	{
		Name:     "偏头痛",
		Symptoms: []string{"头痛", "畏光", "恶心"},
		Drugs:    []string{"布洛芬", "舒马曲坦"},
	},
}

// SeedGraph writes the demo disease graph. MERGE keeps it idempotent so the
// seed can run on every startup.
func SeedGraph(ctx context.Context, driver neo4j.DriverWithContext, database string, diseases []SeedDisease) error {
	if len(diseases) == 0 {
		diseases = DefaultSeedDiseases
	}

	session := driver.NewSession(ctx, neo4j.SessionConfig{
		DatabaseName: database,
		AccessMode:   neo4j.AccessModeWrite,
	})
	defer session.Close(ctx)

	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		for _, d := range diseases {
			if _, err := tx.Run(ctx, "MERGE (:Disease {name: $name})", map[string]any{"name": d.Name}); err != nil {
				return nil, fmt.Errorf("merge disease %s: %w", d.Name, err)
			}
			for _, s := range d.Symptoms {
				_, err := tx.Run(ctx,
					`MATCH (d:Disease {name: $disease})
					 MERGE (s:Symptom {name: $symptom})
					 MERGE (d)-[:HAS_SYMPTOM]->(s)`,
					map[string]any{"disease": d.Name, "symptom": s})
				if err != nil {
					return nil, fmt.Errorf("merge symptom %s: %w", s, err)
				}
			}
			for _, dr := range d.Drugs {
				_, err := tx.Run(ctx,
					`MATCH (d:Disease {name: $disease})
					 MERGE (dr:Drug {name: $drug})
					 MERGE (dr)-[:TREATS]->(d)`,
					map[string]any{"disease": d.Name, "drug": dr})
				if err != nil {
					return nil, fmt.Errorf("merge drug %s: %w", dr, err)
				}
			}
		}
		return nil, nil
	})
	if err != nil {
		return fmt.Errorf("seed graph: %w", err)
	}
	return nil
}
