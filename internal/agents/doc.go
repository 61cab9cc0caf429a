// Package agents binds each remote provider to the text generator.
//
// Every variant ([Mail], [Workspace], [Music]) embeds [Base] and satisfies [Agent]. Provider
// failures never escape an agent: they are logged and degrade to an empty slice, false, an
// error-tagged [models.Status] or a fixed message.
//
// The AI-assisted operations share one shape. Records are fetched and normalized, a bounded subset
// of their fields is serialized as indented JSON into a prompt, and the generator's reply is
// returned as is. Empty input short-circuits with a fixed message and no generator call.
package agents
