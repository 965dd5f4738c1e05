package graphql

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/goliatone/go-cms-community/schema"
)

var pageFields = []string{
	"totalDocs: Int",
	"limit: Int",
	"page: Int",
	"totalPages: Int",
	"hasPrevPage: Boolean",
	"hasNextPage: Boolean",
	"pagingCounter: Int",
}

// Generate renders the SDL describing every collection and global of set.
// Output is deterministic: types follow declaration order.
func Generate(set *schema.Set) string {
	w := &sdlWriter{set: set}
	w.line("scalar DateTime")
	w.blank()
	w.line("scalar JSON")

	for _, collection := range set.Collections() {
		w.collectionTypes(collection)
	}
	for _, global := range set.Globals() {
		w.globalTypes(global)
	}
	w.query()
	w.mutation()
	for _, collection := range set.Collections() {
		w.collectionInputs(collection)
	}
	for _, global := range set.Globals() {
		w.globalInputs(global)
	}
	return w.b.String()
}

type sdlWriter struct {
	set *schema.Set
	b   strings.Builder
}

func (w *sdlWriter) line(format string, args ...any) {
	fmt.Fprintf(&w.b, format, args...)
	w.b.WriteByte('\n')
}

func (w *sdlWriter) blank() {
	w.b.WriteByte('\n')
}

func (w *sdlWriter) block(kind, name string, fields []string) {
	w.blank()
	w.line("%s %s {", kind, name)
	for _, field := range fields {
		w.line("  %s", field)
	}
	w.line("}")
}

func (w *sdlWriter) collectionTypes(collection schema.Collection) {
	name := CollectionTypeName(collection)
	w.enums(name, collection.Fields, collection.DraftsEnabled())
	w.block("type", name, w.objectFields(name, collection.Fields, collection.DraftsEnabled()))
	w.block("type", PageTypeName(collection), append([]string{fmt.Sprintf("docs: [%s]", name)}, pageFields...))
	if collection.Versioned() {
		w.versionTypes(name)
	}
	if collection.Auth {
		w.block("type", name+"LoginResult", []string{fmt.Sprintf("user: %s", name)})
	}
}

func (w *sdlWriter) globalTypes(global schema.Global) {
	name := GlobalTypeName(global)
	w.enums(name, global.Fields, global.DraftsEnabled())
	w.block("type", name, w.objectFields(name, global.Fields, global.DraftsEnabled()))
	if global.Versioned() {
		w.versionTypes(name)
	}
}

func (w *sdlWriter) versionTypes(name string) {
	w.block("type", name+"Version", []string{
		"id: String!",
		fmt.Sprintf("parent: %s", name),
		fmt.Sprintf("version: %s", name),
		"latest: Boolean",
		"createdAt: DateTime",
		"updatedAt: DateTime",
	})
	w.block("type", name+"Versions", append([]string{fmt.Sprintf("docs: [%sVersion]", name)}, pageFields...))
}

func (w *sdlWriter) enums(typeName string, fields []schema.Field, drafts bool) {
	for _, field := range fields {
		if field.Type != schema.FieldSelect {
			continue
		}
		values := make([]string, 0, len(field.Options))
		for _, value := range field.OptionValues() {
			values = append(values, enumValue(value))
		}
		w.block("enum", selectEnumName(typeName, field), values)
	}
	if drafts {
		w.block("enum", typeName+"__status", []string{"draft", "published"})
	}
}

func (w *sdlWriter) objectFields(typeName string, fields []schema.Field, drafts bool) []string {
	out := []string{"id: String!"}
	for _, field := range fields {
		out = append(out, fmt.Sprintf("%s: %s", field.Name, w.outputType(typeName, field)))
	}
	if drafts {
		out = append(out, fmt.Sprintf("_status: %s__status", typeName))
	}
	return append(out, "createdAt: DateTime", "updatedAt: DateTime")
}

func (w *sdlWriter) outputType(typeName string, field schema.Field) string {
	base := scalarType(field)
	switch field.Type {
	case schema.FieldSelect:
		base = selectEnumName(typeName, field)
	case schema.FieldRelationship:
		if target, ok := w.set.Collection(field.RelationTo); ok {
			base = CollectionTypeName(target)
		}
	}
	return decorate(base, field, field.Required)
}

func (w *sdlWriter) inputType(typeName string, field schema.Field, required bool) string {
	base := scalarType(field)
	if field.Type == schema.FieldSelect {
		base = selectEnumName(typeName, field)
	}
	return decorate(base, field, required)
}

func (w *sdlWriter) query() {
	fields := make([]string, 0)
	for _, collection := range w.set.Collections() {
		name := CollectionTypeName(collection)
		findArgs, listArgs := "id: String!", "limit: Int, page: Int"
		if collection.DraftsEnabled() {
			findArgs += ", draft: Boolean"
			listArgs = "draft: Boolean, " + listArgs
		}
		fields = append(fields,
			fmt.Sprintf("%s(%s): %s", name, findArgs, name),
			fmt.Sprintf("%s(%s): %s", PageTypeName(collection), listArgs, PageTypeName(collection)),
		)
		if collection.Versioned() {
			fields = append(fields, fmt.Sprintf("versions%s(id: String!, limit: Int, page: Int): %sVersions", PageTypeName(collection), name))
		}
	}
	for _, global := range w.set.Globals() {
		name := GlobalTypeName(global)
		if global.DraftsEnabled() {
			fields = append(fields, fmt.Sprintf("%s(draft: Boolean): %s", name, name))
		} else {
			fields = append(fields, fmt.Sprintf("%s: %s", name, name))
		}
		if global.Versioned() {
			fields = append(fields, fmt.Sprintf("versions%s(limit: Int, page: Int): %sVersions", name, name))
		}
	}
	w.block("type", "Query", fields)
}

func (w *sdlWriter) mutation() {
	fields := make([]string, 0)
	for _, collection := range w.set.Collections() {
		name := CollectionTypeName(collection)
		if collection.Auth {
			fields = append(fields,
				fmt.Sprintf("create%s(data: mutation%sInput!): %s", name, name, name),
				fmt.Sprintf("login%s(email: String!, password: String!): %sLoginResult", name, name),
			)
			continue
		}
		draftArg := ""
		if collection.DraftsEnabled() {
			draftArg = ", draft: Boolean"
		}
		fields = append(fields,
			fmt.Sprintf("create%s(data: mutation%sInput!%s): %s", name, name, draftArg, name),
			fmt.Sprintf("update%s(id: String!, data: mutation%sUpdateInput!%s): %s", name, name, draftArg, name),
			fmt.Sprintf("delete%s(id: String!): %s", name, name),
		)
		if collection.Versioned() {
			fields = append(fields, fmt.Sprintf("restoreVersion%s(id: String!): %s", name, name))
		}
	}
	for _, global := range w.set.Globals() {
		name := GlobalTypeName(global)
		draftArg := ""
		if global.DraftsEnabled() {
			draftArg = ", draft: Boolean"
		}
		fields = append(fields, fmt.Sprintf("update%s(data: mutation%sInput!%s): %s", name, name, draftArg, name))
		if global.Versioned() {
			fields = append(fields, fmt.Sprintf("restoreVersion%s(id: String!): %s", name, name))
		}
	}
	w.block("type", "Mutation", fields)
}

func (w *sdlWriter) collectionInputs(collection schema.Collection) {
	name := CollectionTypeName(collection)
	create := w.inputFields(name, collection.Fields, true)
	if collection.Auth {
		create = append(create, "password: String!")
		w.block("input", "mutation"+name+"Input", create)
		return
	}
	w.block("input", "mutation"+name+"Input", create)
	w.block("input", "mutation"+name+"UpdateInput", w.inputFields(name, collection.Fields, false))
}

func (w *sdlWriter) globalInputs(global schema.Global) {
	name := GlobalTypeName(global)
	w.block("input", "mutation"+name+"Input", w.inputFields(name, global.Fields, false))
}

func (w *sdlWriter) inputFields(typeName string, fields []schema.Field, create bool) []string {
	out := make([]string, 0, len(fields))
	for _, field := range fields {
		out = append(out, fmt.Sprintf("%s: %s", field.Name, w.inputType(typeName, field, create && field.Required)))
	}
	return out
}

func scalarType(field schema.Field) string {
	switch field.Type {
	case schema.FieldNumber:
		return "Float"
	case schema.FieldCheckbox:
		return "Boolean"
	case schema.FieldDate:
		return "DateTime"
	case schema.FieldRichText:
		return "JSON"
	default:
		return "String"
	}
}

func decorate(base string, field schema.Field, required bool) string {
	if field.HasMany && field.Type != schema.FieldRichText {
		base = "[" + base + "]"
	}
	if required {
		base += "!"
	}
	return base
}

// CollectionTypeName is the object type of a collection document.
func CollectionTypeName(collection schema.Collection) string {
	return typeName(collection.SingularLabel())
}

// PageTypeName is the paginated list type of a collection.
func PageTypeName(collection schema.Collection) string {
	return typeName(collection.PluralLabel())
}

// GlobalTypeName is the object type of a global.
func GlobalTypeName(global schema.Global) string {
	return typeName(global.DisplayLabel())
}

func selectEnumName(typeName string, field schema.Field) string {
	return typeName + "_" + field.Name
}

func typeName(label string) string {
	var b strings.Builder
	upper := true
	for _, r := range label {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			upper = true
			continue
		}
		if upper {
			r = unicode.ToUpper(r)
			upper = false
		}
		b.WriteRune(r)
	}
	name := b.String()
	if name == "" || unicode.IsDigit(rune(name[0])) {
		name = "_" + name
	}
	return name
}

func enumValue(value string) string {
	var b strings.Builder
	for _, r := range value {
		if r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_') {
			b.WriteRune(r)
			continue
		}
		b.WriteByte('_')
	}
	out := b.String()
	if out == "" || unicode.IsDigit(rune(out[0])) {
		out = "_" + out
	}
	return out
}
