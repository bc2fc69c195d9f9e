package config

// DefaultCatalogTOML exposes the embedded catalogue for tests
var DefaultCatalogTOML = defaultCatalog

func NewLoggerForTest(level, format, output string) *Logger {
	return &Logger{level: level, format: format, output: output}
}

func NewAuthForTest(secret string, noAuthn bool) *Auth {
	return &Auth{secret: secret, issuer: "ifrs-modeler", noAuthn: noAuthn}
}

func NewStorageForTest(backend, bucket string) *Storage {
	return &Storage{backend: backend, bucket: bucket}
}

func NewRepositoryForTest(backend, projectID string) *Repository {
	return &Repository{backend: backend, projectID: projectID}
}

func NewSlackForTest(botToken, channelID string) *Slack {
	return &Slack{botToken: botToken, channelID: channelID}
}
