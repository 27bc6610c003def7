package lang

import "errors"

var errParseFailed = errors.New("lang: parser returned no tree")

// ErrUnsupportedExtension is returned by the registry when no
// TargetLanguage claims a requested file extension.
var ErrUnsupportedExtension = errors.New("lang: no target language registered for extension")
