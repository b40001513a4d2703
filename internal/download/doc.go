package download

// Package download implements the single-file download manager: the user picks a
// destination folder, confirms overwrites, and the body is streamed to disk with a
// progress event after every chunk. Failures after the request begins leave the
// partial file on disk and are reported both as an event and as the returned error.
