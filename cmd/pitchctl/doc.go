// Command pitchctl drives a document-to-video pitch from the terminal:
// upload a master document, follow transcription and synthesis, edit the
// transcript, manage reference documents, and chat about the pitch.
//
// Session state is kept in a SQLite database under the configured state
// directory so consecutive invocations continue the same pitch. Use
// --session to work on several pitches side by side.
package main
