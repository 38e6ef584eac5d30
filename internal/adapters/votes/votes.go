// Package votes persists and loads evaluator vote records on a blob store.
//
// One record lives at one key derived from the evaluator name, so a
// resubmission overwrites the evaluator's previous record at the store
// layer with no application-level locking. The write path is Writer; the
// read path is Loader.
package votes

import "path"

// Namespace is the folder holding one JSON object per evaluator.
const Namespace = "vote_results"

// recordExt is the extension of persisted vote records; listings filter on it.
const recordExt = ".json"

// recordKey derives the storage key for an evaluator's record.
func recordKey(baseFolder, evaluatorName string) string {
	return path.Join(baseFolder, Namespace, evaluatorName+recordExt)
}

// namespaceKey derives the listing prefix for the vote record namespace.
func namespaceKey(baseFolder string) string {
	return path.Join(baseFolder, Namespace)
}
