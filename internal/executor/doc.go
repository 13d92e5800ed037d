// Package executor executes GraphQL operations against a schema.Schema by
// calling into a Runtime for field resolution, subscription sources and
// abstract type resolution.
//
// # Overview
//
// An execution pass has three stages:
//  1. Build the execution context: choose the operation (by name, or the only
//     one when unnamed), coerce the variables against the operation's variable
//     definitions and index the fragments. Failures here produce a result with
//     errors only; no resolver runs.
//  2. Collect the root selection set into field groups. Fields sharing a
//     response key are merged and keep the position of their first occurrence
//     after fragments are flattened. @skip and @include are evaluated here.
//  3. Execute the field groups and complete their values.
//
// # Execution Model
//
// For every object the executor first calls the resolvers of all its field
// groups in selection order. A resolver may return a plain value or a
// *Future; plain values are treated as already settled.
//
// Completion follows. Fields whose completion may wait (an unsettled Future,
// an object, an interface, a union or a list) are completed on their own
// goroutines; settled leaves are completed inline. The object is built only
// after every sibling has settled, so the key order of the result is always
// the selection order and never the settle order. List items are handled the
// same way.
//
// Mutation root fields run serially: each field is resolved and completed
// before the next resolver is called.
//
// Runtime.ResolveType, IsTypeOf checks and leaf serializers are synchronous
// hooks: they return a value, never a Future. A leaf is serialized inline on
// the goroutine that completes its parent, so a slow serializer delays the
// siblings that follow it. Hooks that must wait belong in the resolver, which
// can return a Future.
//
// ExecuteSync never waits. A resolver that returns an unsettled Future makes
// the whole call fail with ErrNotSynchronous. Blocking inside a synchronous
// hook is not detected.
//
// # Value Completion
//
//   - Non-Null: complete the inner type; a null result is the error
//     "Cannot return null for non-nullable field T.f.".
//   - List: slices, arrays and iter.Seq[any]; each item completes at its own
//     index path.
//   - Leaf (Scalar/Enum): the type's SerializeValue.
//   - Abstract (Interface/Union): Runtime.ResolveType names the concrete type,
//     which must be an object type and a possible type of the abstract type.
//   - Object: the type's IsTypeOf check when declared, then the merged
//     sub-selection of the field group.
//
// # Errors and Partial Success
//
// An error anywhere below a field is located at its origin (field nodes and
// path) and travels up through non-null positions until a nullable field or
// list item absorbs it: the error is logged and that position becomes null.
// When nothing absorbs it, data is null. Resolver panics become errors of the
// field that panicked.
//
// The order of the errors slice depends on the order in which concurrent
// branches settle. Data order does not.
//
// # Subscriptions
//
// Subscribe resolves the root field with Runtime.SubscribeField, which must
// return an EventStream or a receive channel, and maps every event to an
// ExecutionResult by executing the operation with the event as root value.
// MapEventStream implements the mapping; see MappedStream for the close and
// failure rules.
package executor
