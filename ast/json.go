package ast

import (
	"encoding/json"
)

// FormatJSON returns a pretty-printed JSON view of the AST.
func FormatJSON(node Node) (string, error) {
	value := toJSON(node)
	data, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return "", err
	}
	return string(data) + "\n", nil
}

func toJSON(node Node) interface{} {
	if node == nil {
		return nil
	}

	switch n := node.(type) {
	case *NumberLiteral:
		return map[string]interface{}{
			"type":  "NumberLiteral",
			"value": n.Value,
		}
	case *CellRef:
		return map[string]interface{}{
			"type":  "CellRef",
			"label": n.Token.Literal,
			"valid": n.Pos.IsValid(),
		}
	case *PrefixExpression:
		return map[string]interface{}{
			"type":     "PrefixExpression",
			"operator": n.Operator,
			"right":    toJSON(n.Right),
		}
	case *InfixExpression:
		return map[string]interface{}{
			"type":     "InfixExpression",
			"operator": n.Operator,
			"left":     toJSON(n.Left),
			"right":    toJSON(n.Right),
		}
	default:
		return map[string]interface{}{
			"type": "Unknown",
		}
	}
}
