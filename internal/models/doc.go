// Package models defines the domain types shared by the upload client.
//
// The package contains two categories of types:
//
// 1. Transient values describing one upload session
//   - [SelectedFile] : the image picked by the user, with detected format
//   - [Phase] : the UI phase of the current session
//   - [ResultImage] : the processed image returned by the service
//
// 2. Persistent entities
//   - [UploadRecord] : one row of upload history
//
// Persistent entities implement [Model]; [Repository] defines the storage operations used for them.
package models
