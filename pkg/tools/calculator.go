package tools

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"

	"github.com/richard-senior/mcp/internal/logger"
	"github.com/richard-senior/mcp/pkg/protocol"
)

func CalculatorTool() protocol.Tool {
	return protocol.Tool{
		Name:        "calculator",
		Description: "A simple calculator that can perform basic arithmetic operations",
		InputSchema: objectSchema(map[string]any{
			"expression": map[string]any{
				"type":        "string",
				"description": "A simple arithmetic expression with spaces between the numbers and the operator, such as 2 + 2 or 4 * 6",
			},
		}, []string{"expression"}),
		Annotations: &protocol.ToolAnnotations{ReadOnlyHint: true, IdempotentHint: true},
	}
}

type calculatorArgs struct {
	Expression string `json:"expression"`
}

func HandleCalculator(ctx context.Context, args json.RawMessage) (*protocol.CallToolResult, *protocol.ProtocolError) {
	var a calculatorArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, protocol.NewProtocolError(protocol.ErrInvalidParams, "invalid arguments: "+err.Error())
	}
	if a.Expression == "" {
		return errResult("expression is required"), nil
	}

	result, err := evaluateExpression(a.Expression)
	if err != nil {
		return errResult("%v", err), nil
	}

	logger.Debug("calculator evaluated", a.Expression, "=", result)
	r, perr := jsonResult(map[string]any{"result": result, "expression": a.Expression})
	return r, perr
}

// evaluateExpression handles a single "number operator number" expression.
// It does not implement a general expression parser -- multi-step
// arithmetic is out of scope for this example tool.
func evaluateExpression(expression string) (float64, error) {
	parts := strings.Fields(strings.TrimSpace(expression))
	if len(parts) != 3 {
		return 0, &exprError{"expression must be in the form 'number operator number'"}
	}

	num1, err := strconv.ParseFloat(parts[0], 64)
	if err != nil {
		return 0, &exprError{"invalid first number: " + parts[0]}
	}
	num2, err := strconv.ParseFloat(parts[2], 64)
	if err != nil {
		return 0, &exprError{"invalid second number: " + parts[2]}
	}

	switch parts[1] {
	case "+":
		return num1 + num2, nil
	case "-":
		return num1 - num2, nil
	case "*":
		return num1 * num2, nil
	case "/":
		if num2 == 0 {
			return 0, &exprError{"division by zero"}
		}
		return num1 / num2, nil
	default:
		return 0, &exprError{"unsupported operator: " + parts[1]}
	}
}

type exprError struct{ msg string }

func (e *exprError) Error() string { return e.msg }
