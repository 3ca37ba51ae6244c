package schema

import "reflect"

// Clone returns a deep copy of the schema.
func (s Schema) Clone() Schema {
	return Schema{Meta: s.Meta, Fields: cloneFields(s.Fields)}
}

// Clone returns a deep copy of the field, including section children.
func (f Field) Clone() Field {
	out := f
	out.Default = CloneValue(f.Default)
	out.Options = cloneOptions(f.Options)
	out.Validation = cloneRules(f.Validation)
	out.Logic = cloneLogic(f.Logic)
	out.Visibility = cloneVisibility(f.Visibility)
	out.Fields = cloneFields(f.Fields)
	return out
}

// CloneValue deep copies dynamically typed values (maps and slices of any
// depth); scalars are returned as is.
func CloneValue(value any) any {
	switch typed := value.(type) {
	case nil:
		return nil
	case map[string]any:
		clone := make(map[string]any, len(typed))
		for k, v := range typed {
			clone[k] = CloneValue(v)
		}
		return clone
	case []any:
		clone := make([]any, len(typed))
		for i, v := range typed {
			clone[i] = CloneValue(v)
		}
		return clone
	case []string:
		return append([]string(nil), typed...)
	case []float64:
		return append([]float64(nil), typed...)
	}

	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Slice:
		if rv.IsNil() {
			return value
		}
		clone := reflect.MakeSlice(rv.Type(), rv.Len(), rv.Len())
		for i := 0; i < rv.Len(); i++ {
			item := CloneValue(rv.Index(i).Interface())
			if item == nil {
				continue
			}
			clone.Index(i).Set(reflect.ValueOf(item))
		}
		return clone.Interface()
	case reflect.Map:
		if rv.IsNil() {
			return value
		}
		clone := reflect.MakeMapWithSize(rv.Type(), rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			item := CloneValue(iter.Value().Interface())
			if item == nil {
				clone.SetMapIndex(iter.Key(), reflect.Zero(rv.Type().Elem()))
				continue
			}
			clone.SetMapIndex(iter.Key(), reflect.ValueOf(item))
		}
		return clone.Interface()
	default:
		return value
	}
}

// CloneData deep copies a form data map.
func CloneData(data map[string]any) map[string]any {
	if data == nil {
		return map[string]any{}
	}
	out := make(map[string]any, len(data))
	for k, v := range data {
		out[k] = CloneValue(v)
	}
	return out
}

func cloneFields(in []Field) []Field {
	if in == nil {
		return nil
	}
	out := make([]Field, len(in))
	for i := range in {
		out[i] = in[i].Clone()
	}
	return out
}

func cloneOptions(in []Option) []Option {
	if in == nil {
		return nil
	}
	out := make([]Option, len(in))
	for i, opt := range in {
		out[i] = Option{Value: CloneValue(opt.Value), Label: opt.Label}
	}
	return out
}

func cloneRules(in []ValidationRule) []ValidationRule {
	if in == nil {
		return nil
	}
	out := make([]ValidationRule, len(in))
	for i, rule := range in {
		rule.Value = CloneValue(rule.Value)
		if rule.Min != nil {
			rule.Min = Ptr(*rule.Min)
		}
		if rule.Max != nil {
			rule.Max = Ptr(*rule.Max)
		}
		out[i] = rule
	}
	return out
}

func cloneLogic(in []LogicRule) []LogicRule {
	if in == nil {
		return nil
	}
	out := make([]LogicRule, len(in))
	for i, rule := range in {
		var cond *Condition
		if rule.If != nil {
			c := *rule.If
			c.Value = CloneValue(c.Value)
			cond = &c
		}
		out[i] = LogicRule{If: cond, Then: cloneActions(rule.Then)}
	}
	return out
}

func cloneActions(in []Action) []Action {
	if in == nil {
		return nil
	}
	out := make([]Action, len(in))
	for i, action := range in {
		out[i] = Action{
			Action:  action.Action,
			Value:   CloneValue(action.Value),
			Options: cloneOptions(action.Options),
		}
	}
	return out
}

func cloneVisibility(in *Visibility) *Visibility {
	if in == nil {
		return nil
	}
	out := *in
	out.Value = CloneValue(in.Value)
	return &out
}
