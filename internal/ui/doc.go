// Package ui implements an interactive terminal interface using bubbletea's Elm architecture.
//
// The TUI walks through one background removal at a time:
//  1. [SelectView] : Browse for an image with the file picker; the Upload button is enabled once a file is chosen
//  2. [UploadView] : Watch the upload progress bar, then the processing spinner
//  3. [ResultView] : Inspect the result modal, download or open the image, and dismiss it
//  4. [AlertView] : Read a blocking failure message; any key returns to [SelectView]
//  5. [HistoryView] : Browse recorded uploads
//
// The (view) [Model] implements bubbletea/Elm's standard Init/Update/View pattern, receiving messages via the Msg union type.
// Progress updates flow through a channel from the upload controller, providing non-blocking status reporting during uploads.
//
// The result modal closes via its Close button (enter), the close icon (x), a mouse click on the backdrop or esc.
package ui
