// package tasks implements the upload controller driving one background-removal session at a time.
//
// [Controller] owns the selected file, the session phase and the result reference:
//
//	idle -> uploading -> processing -> success | error -> idle
//
// Progress is reported on a caller-supplied channel as [ProgressUpdate] values. Sends never block; a
// channel with room for 128 updates sees every percentage change. The processing phase is reported only
// after upload progress reached 100% and the configured delay elapsed, and never once the session ended.
//
// A successful upload is written to a temporary file that plays the role of a blob URL: it is both the
// image source and the download target of the result [Modal] and is removed when the modal closes.
package tasks
