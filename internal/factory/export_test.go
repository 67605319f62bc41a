package factory

// WithRegistry exposes the backend arena swap to the external test package
var WithRegistry = withRegistry
