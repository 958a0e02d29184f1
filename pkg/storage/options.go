package storage

// Option configures Put operations.
type Option func(*putOptions)

type putOptions struct {
	key             string           // Explicit key (replaces auto-generated)
	prefix          string           // Path prefix (e.g., "uploads")
	tenant          string           // First path segment, used to group files per session
	contentType     string           // Override detected content type
	validationRules []ValidationRule // Validation rules to apply before upload
}

// WithKey sets an explicit storage key, replacing the auto-generated ULID-based key.
func WithKey(key string) Option {
	return func(o *putOptions) {
		o.key = key
	}
}

// WithPrefix sets a path prefix for the uploaded file.
// Example: WithPrefix("uploads") results in "uploads/{ulid}.{ext}"
func WithPrefix(prefix string) Option {
	return func(o *putOptions) {
		o.prefix = prefix
	}
}

// WithTenant sets the first path segment of the key.
// Example: WithTenant("sess1") results in "sess1/{prefix}/{ulid}.{ext}"
func WithTenant(id string) Option {
	return func(o *putOptions) {
		o.tenant = id
	}
}

// WithContentType overrides the auto-detected content type.
func WithContentType(ct string) Option {
	return func(o *putOptions) {
		o.contentType = ct
	}
}

// WithValidation adds validation rules to be applied before upload.
// If any rule fails, the upload is aborted and a *FileValidationError is returned.
func WithValidation(rules ...ValidationRule) Option {
	return func(o *putOptions) {
		o.validationRules = append(o.validationRules, rules...)
	}
}
