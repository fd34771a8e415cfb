package internal

// Version is the treetranslate release version
const Version = "0.3.0"
