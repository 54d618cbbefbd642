package detect

import (
	"fmt"
	"strings"

	"guard-bot/internal/lang"
	"guard-bot/internal/pattern"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"
	python "github.com/tree-sitter/tree-sitter-python/bindings/go"
	"go.uber.org/zap"
)

// StructuralResult carries the structural checker outcome. Available is
// false when the source could not be parsed, which is distinct from "parsed
// and found nothing": the aggregator and tests rely on that distinction.
type StructuralResult struct {
	Available  bool
	Detections []pattern.Detection
}

// StructuralChecker evaluates syntax-tree predicates that lexical matching
// cannot express: missing parameter validation, duplicate blocks, nested
// loops, per-iteration external calls, and multi-line skip decorators.
type StructuralChecker struct {
	dupBlockLines int
	dupMinChars   int
	logger        *zap.Logger
}

// NewStructuralChecker creates a checker with the default duplicate-block
// window (10 lines, trivial blocks under 50 significant characters skipped)
func NewStructuralChecker(logger *zap.Logger) *StructuralChecker {
	return &StructuralChecker{
		dupBlockLines: 10,
		dupMinChars:   50,
		logger:        logger,
	}
}

// Check runs all structural predicates against the source. Parse failures
// degrade silently: the result comes back unavailable and the caller falls
// back to lexical detections alone. Never panics past this boundary.
func (c *StructuralChecker) Check(code, filePath string, enabled map[pattern.Type]bool) (result StructuralResult) {
	defer func() {
		if r := recover(); r != nil {
			c.logger.Warn("Structural checker panicked, degrading to lexical only",
				zap.Any("panic", r))
			result = StructuralResult{Available: false}
		}
	}()

	source := []byte(code)

	// Duplicate-code comparison is token based and language aware, so it
	// runs off the tokenizer for the payload's language rather than the
	// Python grammar used by the other predicates.
	if enabled[pattern.TypeDuplicateCode] {
		dets, err := c.duplicateBlocks(source, filePath)
		if err != nil {
			c.logger.Debug("Duplicate-block check skipped", zap.Error(err))
		} else {
			result.Available = true
			result.Detections = append(result.Detections, dets...)
		}
	}

	if !isPythonPath(filePath) {
		return result
	}

	tree, err := parsePython(source)
	if err != nil {
		c.logger.Debug("Structural parse unavailable", zap.Error(err))
		return result
	}
	defer tree.Close()

	root := tree.RootNode()
	if root.HasError() {
		c.logger.Debug("Source has syntax errors, skipping syntax-tree checks")
		return result
	}

	result.Available = true
	if enabled[pattern.TypeAssumptionBypass] {
		result.Detections = append(result.Detections, c.checkAssumptionBypass(root, source)...)
	}
	if enabled[pattern.TypePerformanceDegradation] {
		result.Detections = append(result.Detections, c.checkLoops(root, source)...)
	}
	if enabled[pattern.TypeTestAvoidance] {
		result.Detections = append(result.Detections, c.checkSkipDecorators(root, source)...)
	}
	return result
}

func parsePython(source []byte) (*tree_sitter.Tree, error) {
	parser := tree_sitter.NewParser()
	if err := parser.SetLanguage(tree_sitter.NewLanguage(python.Language())); err != nil {
		return nil, fmt.Errorf("failed to set Python language: %w", err)
	}
	tree := parser.Parse(source, nil)
	if tree == nil {
		return nil, fmt.Errorf("failed to parse Python source")
	}
	return tree, nil
}

func isPythonPath(filePath string) bool {
	if filePath == "" {
		return true // hook payloads without a path are treated as Python
	}
	return strings.HasSuffix(filePath, ".py")
}

// checkAssumptionBypass flags function definitions whose body never guards
// any parameter before use. Confidence rises when a parameter flows into a
// risky operation (division, subscript, attribute access) unguarded.
func (c *StructuralChecker) checkAssumptionBypass(root *tree_sitter.Node, source []byte) []pattern.Detection {
	var detections []pattern.Detection

	walk(root, func(node *tree_sitter.Node) {
		if node.Kind() != "function_definition" {
			return
		}

		params := parameterNames(node, source)
		if len(params) == 0 {
			return
		}
		if hasGuard(node.ChildByFieldName("body")) {
			return
		}

		confidence := 0.7
		if paramReachesRiskyOp(node.ChildByFieldName("body"), source, params) {
			confidence = 0.85
		}

		name := "?"
		if n := node.ChildByFieldName("name"); n != nil {
			name = n.Utf8Text(source)
		}

		detections = append(detections, pattern.Detection{
			Type:           pattern.TypeAssumptionBypass,
			Severity:       pattern.SeverityWarning,
			Line:           int(node.StartPosition().Row) + 1,
			Snippet:        fmt.Sprintf("def %s(%s)", name, strings.Join(params, ", ")),
			Description:    "Function uses parameters without validation",
			Impact:         "Will crash on edge cases: None, empty strings, negative numbers, etc.",
			Recommendation: fmt.Sprintf("Add validation: if %s is None: raise ValueError(...)", params[0]),
			Confidence:     confidence,
			Source:         pattern.SourceStructural,
		})
	})

	return detections
}

func parameterNames(fn *tree_sitter.Node, source []byte) []string {
	paramsNode := fn.ChildByFieldName("parameters")
	if paramsNode == nil {
		return nil
	}

	var names []string
	for i := uint(0); i < paramsNode.NamedChildCount(); i++ {
		child := paramsNode.NamedChild(i)
		var ident *tree_sitter.Node
		switch child.Kind() {
		case "identifier":
			ident = child
		case "default_parameter", "typed_parameter", "typed_default_parameter":
			ident = firstChildOfKind(child, "identifier")
		}
		if ident == nil {
			continue
		}
		name := ident.Utf8Text(source)
		if name == "self" || name == "cls" {
			continue
		}
		names = append(names, name)
	}
	return names
}

func hasGuard(body *tree_sitter.Node) bool {
	if body == nil {
		return false
	}
	found := false
	walk(body, func(node *tree_sitter.Node) {
		switch node.Kind() {
		case "if_statement", "assert_statement", "conditional_expression":
			found = true
		}
	})
	return found
}

func paramReachesRiskyOp(body *tree_sitter.Node, source []byte, params []string) bool {
	if body == nil {
		return false
	}
	paramSet := make(map[string]bool, len(params))
	for _, p := range params {
		paramSet[p] = true
	}

	isParam := func(node *tree_sitter.Node) bool {
		return node != nil && node.Kind() == "identifier" && paramSet[node.Utf8Text(source)]
	}

	risky := false
	walk(body, func(node *tree_sitter.Node) {
		switch node.Kind() {
		case "binary_operator":
			op := node.ChildByFieldName("operator")
			if op == nil {
				return
			}
			switch op.Utf8Text(source) {
			case "/", "//", "%":
				if isParam(node.ChildByFieldName("left")) || isParam(node.ChildByFieldName("right")) {
					risky = true
				}
			}
		case "subscript":
			if isParam(node.ChildByFieldName("value")) {
				risky = true
			}
		case "attribute":
			if isParam(node.ChildByFieldName("object")) {
				risky = true
			}
		}
	})
	return risky
}

// checkLoops flags quadratic loop nesting and per-iteration external calls
func (c *StructuralChecker) checkLoops(root *tree_sitter.Node, source []byte) []pattern.Detection {
	var detections []pattern.Detection
	c.walkLoops(root, source, 0, &detections)
	return detections
}

func (c *StructuralChecker) walkLoops(node *tree_sitter.Node, source []byte, depth int, detections *[]pattern.Detection) {
	if node == nil {
		return
	}

	kind := node.Kind()
	if kind == "for_statement" || kind == "while_statement" {
		depth++
		if depth == 2 {
			*detections = append(*detections, pattern.Detection{
				Type:           pattern.TypePerformanceDegradation,
				Severity:       pattern.SeverityInfo,
				Line:           int(node.StartPosition().Row) + 1,
				Snippet:        firstLineOf(node, source),
				Description:    "Potential O(n^2) complexity from nested loops",
				Impact:         "Performance degrades quadratically. 100 items = 10K operations. 1000 items = 1M operations.",
				Recommendation: "Consider using dict lookup (O(1)) or set operations instead",
				Confidence:     0.6,
				Source:         pattern.SourceStructural,
			})
		} else if depth > 2 {
			*detections = append(*detections, pattern.Detection{
				Type:           pattern.TypePerformanceDegradation,
				Severity:       pattern.SeverityWarning,
				Line:           int(node.StartPosition().Row) + 1,
				Snippet:        firstLineOf(node, source),
				Description:    fmt.Sprintf("Loop nesting at depth %d", depth),
				Impact:         "Runtime explodes combinatorially with input size.",
				Recommendation: "Flatten the traversal or precompute lookups outside the inner loops",
				Confidence:     0.75,
				Source:         pattern.SourceStructural,
			})
		}

		if body := node.ChildByFieldName("body"); body != nil {
			*detections = append(*detections, c.callsInLoopBody(body, source)...)
		}
	}

	for i := uint(0); i < node.ChildCount(); i++ {
		c.walkLoops(node.Child(i), source, depth, detections)
	}
}

// callsInLoopBody reports external calls directly inside this loop's body.
// Nested loops are not descended into: each call is attributed to its
// innermost enclosing loop, so a call is reported exactly once no matter
// how deep the nest.
func (c *StructuralChecker) callsInLoopBody(body *tree_sitter.Node, source []byte) []pattern.Detection {
	var detections []pattern.Detection
	var visit func(node *tree_sitter.Node)
	visit = func(node *tree_sitter.Node) {
		if node == nil {
			return
		}
		switch node.Kind() {
		case "for_statement", "while_statement":
			return
		case "call":
			fn := node.ChildByFieldName("function")
			if fn != nil && looksLikeExternalCall(fn.Utf8Text(source)) {
				detections = append(detections, pattern.Detection{
					Type:           pattern.TypePerformanceDegradation,
					Severity:       pattern.SeverityWarning,
					Line:           int(node.StartPosition().Row) + 1,
					Snippet:        firstLineOf(node, source),
					Description:    "Repeated external call inside loop without batching",
					Impact:         "N+1 query problem. 100 items = 100 API calls. Slow + rate limit issues.",
					Recommendation: "Batch API calls or use bulk endpoints",
					Confidence:     0.8,
					Source:         pattern.SourceStructural,
				})
			}
		}
		for i := uint(0); i < node.ChildCount(); i++ {
			visit(node.Child(i))
		}
	}
	for i := uint(0); i < body.ChildCount(); i++ {
		visit(body.Child(i))
	}
	return detections
}

func looksLikeExternalCall(callee string) bool {
	if strings.HasPrefix(callee, "requests.") ||
		strings.HasPrefix(callee, "http.") ||
		strings.HasPrefix(callee, "urllib.") {
		return true
	}
	switch callee {
	case "fetch", "get":
		return true
	}
	return strings.HasSuffix(callee, ".fetch") || strings.HasSuffix(callee, ".get")
}

// checkSkipDecorators catches skip annotations structurally, which matters
// when the decorator call spans multiple lines and the lexical pattern
// anchored to one line misses it
func (c *StructuralChecker) checkSkipDecorators(root *tree_sitter.Node, source []byte) []pattern.Detection {
	var detections []pattern.Detection

	walk(root, func(node *tree_sitter.Node) {
		if node.Kind() != "decorated_definition" {
			return
		}

		def := node.ChildByFieldName("definition")
		if def == nil || def.Kind() != "function_definition" {
			return
		}
		nameNode := def.ChildByFieldName("name")
		if nameNode == nil || !strings.HasPrefix(nameNode.Utf8Text(source), "test") {
			return
		}

		for i := uint(0); i < node.ChildCount(); i++ {
			dec := node.Child(i)
			if dec.Kind() != "decorator" {
				continue
			}
			text := dec.Utf8Text(source)
			if !strings.Contains(text, "pytest.mark.skip") && !strings.Contains(text, "unittest.skip") {
				continue
			}
			detections = append(detections, pattern.Detection{
				Type:           pattern.TypeTestAvoidance,
				Severity:       pattern.SeverityWarning,
				Line:           int(dec.StartPosition().Row) + 1,
				Snippet:        firstLineOf(dec, source),
				Description:    fmt.Sprintf("Test %s marked as skip", nameNode.Utf8Text(source)),
				Impact:         "Skipped tests = untested code. Regressions will go unnoticed.",
				Recommendation: "Fix the test instead of skipping. If temporary, add issue reference and deadline.",
				Confidence:     0.9,
				Source:         pattern.SourceStructural,
			})
		}
	})

	return detections
}

// duplicateBlocks reports pairs of 10-line blocks whose normalized token
// sequences are identical. Each pair is reported once, at its later
// occurrence; overlapping windows of the same run are collapsed.
func (c *StructuralChecker) duplicateBlocks(source []byte, filePath string) ([]pattern.Detection, error) {
	tokenizer, err := lang.ForPath(filePath)
	if err != nil {
		return nil, err
	}

	normByLine, err := tokenizer.NormalizedLines(source)
	if err != nil {
		return nil, err
	}

	rawLines := strings.Split(string(source), "\n")
	total := len(rawLines)
	norm := make([]string, total+1)
	for line, text := range normByLine {
		if line >= 1 && line <= total {
			norm[line] = text
		}
	}

	var detections []pattern.Detection
	seen := make(map[string]int)

	for i := 1; i+c.dupBlockLines-1 <= total; {
		block := strings.Join(norm[i:i+c.dupBlockLines], "\n")
		if len(strings.ReplaceAll(block, "\n", "")) < c.dupMinChars {
			i++
			continue
		}

		first, dup := seen[block]
		if !dup {
			seen[block] = i
			i++
			continue
		}

		detections = append(detections, pattern.Detection{
			Type:           pattern.TypeDuplicateCode,
			Severity:       pattern.SeverityWarning,
			Line:           i,
			Snippet:        strings.TrimSpace(rawLines[i-1]),
			Description:    fmt.Sprintf("%d-line duplicate code block (also at line %d)", c.dupBlockLines, first),
			Impact:         "Violates DRY. Bug fixes need multiple changes. Maintenance nightmare.",
			Recommendation: "Extract to function or refactor common logic",
			Confidence:     0.9,
			Source:         pattern.SourceStructural,
		})
		i += c.dupBlockLines
	}

	return detections, nil
}

func walk(node *tree_sitter.Node, visit func(*tree_sitter.Node)) {
	if node == nil {
		return
	}
	visit(node)
	for i := uint(0); i < node.ChildCount(); i++ {
		walk(node.Child(i), visit)
	}
}

func firstChildOfKind(node *tree_sitter.Node, kind string) *tree_sitter.Node {
	for i := uint(0); i < node.ChildCount(); i++ {
		if child := node.Child(i); child.Kind() == kind {
			return child
		}
	}
	return nil
}

func firstLineOf(node *tree_sitter.Node, source []byte) string {
	text := node.Utf8Text(source)
	if idx := strings.IndexByte(text, '\n'); idx >= 0 {
		text = text[:idx]
	}
	return strings.TrimSpace(text)
}
