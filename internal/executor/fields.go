package executor

import (
	schema "github.com/hanpama/gqlengine/internal/schema"
	"github.com/vektah/gqlparser/v2/ast"
)

// collectedFieldMap preserves field order from the original query
type collectedFieldMap struct {
	fields []collectedField
	index  map[string]int
}

type collectedField struct {
	ResponseName string
	Fields       []*ast.Field
}

func newCollectedFieldMap() *collectedFieldMap {
	return &collectedFieldMap{index: make(map[string]int)}
}

func (cfm *collectedFieldMap) add(responseName string, field *ast.Field) {
	if idx, exists := cfm.index[responseName]; exists {
		cfm.fields[idx].Fields = append(cfm.fields[idx].Fields, field)
		return
	}
	cfm.index[responseName] = len(cfm.fields)
	cfm.fields = append(cfm.fields, collectedField{
		ResponseName: responseName,
		Fields:       []*ast.Field{field},
	})
}

func (cfm *collectedFieldMap) orderedFields() []collectedField {
	return cfm.fields
}

// collectFields groups the fields of selectionSet that apply to objectType by
// response name, in first-occurrence order.
func (ec *executionContext) collectFields(objectType *schema.Type, selectionSet ast.SelectionSet) (*collectedFieldMap, error) {
	fields := newCollectedFieldMap()
	if err := ec.collectFieldsImpl(objectType, selectionSet, fields, make(map[string]bool)); err != nil {
		return nil, err
	}
	return fields, nil
}

// collectSubfields merges the selection sets of every node of a field group.
func (ec *executionContext) collectSubfields(objectType *schema.Type, nodes []*ast.Field) (*collectedFieldMap, error) {
	fields := newCollectedFieldMap()
	visited := make(map[string]bool)
	for _, node := range nodes {
		if len(node.SelectionSet) == 0 {
			continue
		}
		if err := ec.collectFieldsImpl(objectType, node.SelectionSet, fields, visited); err != nil {
			return nil, err
		}
	}
	return fields, nil
}

func (ec *executionContext) collectFieldsImpl(objectType *schema.Type, selectionSet ast.SelectionSet, fields *collectedFieldMap, visited map[string]bool) error {
	for _, selection := range selectionSet {
		switch sel := selection.(type) {
		case *ast.Field:
			include, err := ec.shouldIncludeNode(sel.Directives)
			if err != nil {
				return err
			}
			if !include {
				continue
			}
			responseName := sel.Alias
			if responseName == "" {
				responseName = sel.Name
			}
			fields.add(responseName, sel)

		case *ast.InlineFragment:
			include, err := ec.shouldIncludeNode(sel.Directives)
			if err != nil {
				return err
			}
			if !include || !ec.doesFragmentConditionMatch(sel.TypeCondition, objectType) {
				continue
			}
			if err := ec.collectFieldsImpl(objectType, sel.SelectionSet, fields, visited); err != nil {
				return err
			}

		case *ast.FragmentSpread:
			if visited[sel.Name] {
				continue
			}
			include, err := ec.shouldIncludeNode(sel.Directives)
			if err != nil {
				return err
			}
			if !include {
				continue
			}
			visited[sel.Name] = true

			fragment := ec.fragments[sel.Name]
			if fragment == nil || !ec.doesFragmentConditionMatch(fragment.TypeCondition, objectType) {
				continue
			}
			if err := ec.collectFieldsImpl(objectType, fragment.SelectionSet, fields, visited); err != nil {
				return err
			}
		}
	}
	return nil
}

// shouldIncludeNode evaluates @skip and @include against the coerced variables.
func (ec *executionContext) shouldIncludeNode(directives ast.DirectiveList) (bool, error) {
	if len(directives) == 0 {
		return true, nil
	}
	skip, err := CoerceDirectiveValues(ec.schema, schema.SkipDirective(), directives, ec.variableValues)
	if err != nil {
		return false, err
	}
	if skip != nil && skip["if"] == true {
		return false, nil
	}
	include, err := CoerceDirectiveValues(ec.schema, schema.IncludeDirective(), directives, ec.variableValues)
	if err != nil {
		return false, err
	}
	if include != nil && include["if"] == false {
		return false, nil
	}
	return true, nil
}

func (ec *executionContext) doesFragmentConditionMatch(typeCondition string, objectType *schema.Type) bool {
	if typeCondition == "" || typeCondition == objectType.Name {
		return true
	}
	conditional := ec.schema.GetType(typeCondition)
	if conditional == nil || !conditional.IsAbstract() {
		return false
	}
	return ec.schema.IsSubType(conditional, objectType)
}
