package media

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Message keys. The English text doubles as the catalog key.
const (
	msgImageTooLarge   = "Image too large (max %d MB). Try a smaller image."
	msgVideoTooLarge   = "Video too large (max %d MB). Try trimming it or lowering the quality."
	msgAudioTooLarge   = "Audio file too large (max %d MB)."
	msgUnsupportedType = "Unsupported file type."
	msgWrongKind       = "File must be of type %s."
	msgTranscodeFailed = "Could not convert the image. Try another file."
	msgUploadFailed    = "Upload failed. Please try again."
	msgDeleteFailed    = "Could not delete the file. Please try again."
)

// DefaultLanguage is the product's primary locale.
var DefaultLanguage = language.BrazilianPortuguese

func init() {
	pt := language.BrazilianPortuguese
	for key, text := range map[string]string{
		msgImageTooLarge:   "Imagem muito grande (Máx %dMB). Tente uma imagem menor.",
		msgVideoTooLarge:   "Vídeo muito grande (Máx %dMB). Tente cortar ou diminuir a qualidade.",
		msgAudioTooLarge:   "Arquivo de áudio muito grande (Máx %dMB).",
		msgUnsupportedType: "Tipo de arquivo não suportado.",
		msgWrongKind:       "O arquivo precisa ser do tipo %s.",
		msgTranscodeFailed: "Não foi possível converter a imagem. Tente outro arquivo.",
		msgUploadFailed:    "Falha no upload. Tente novamente.",
		msgDeleteFailed:    "Falha ao remover o arquivo. Tente novamente.",
	} {
		_ = message.SetString(pt, key, text)
	}
}

// Messages renders user-facing texts in one language.
type Messages struct {
	p *message.Printer
}

// NewMessages returns a renderer for tag. Unknown tags fall back to English.
func NewMessages(tag language.Tag) Messages {
	return Messages{p: message.NewPrinter(tag)}
}

func (m Messages) printer() *message.Printer {
	if m.p == nil {
		return message.NewPrinter(DefaultLanguage)
	}
	return m.p
}

func (m Messages) TooLarge(k Kind) string {
	mb := MaxBytes(k) / mib
	switch k {
	case KindImage:
		return m.printer().Sprintf(msgImageTooLarge, mb)
	case KindVideo:
		return m.printer().Sprintf(msgVideoTooLarge, mb)
	case KindAudio:
		return m.printer().Sprintf(msgAudioTooLarge, mb)
	default:
		return m.UnsupportedType()
	}
}

func (m Messages) UnsupportedType() string { return m.printer().Sprintf(msgUnsupportedType) }

func (m Messages) WrongKind(want Kind) string { return m.printer().Sprintf(msgWrongKind, string(want)) }

func (m Messages) TranscodeFailed() string { return m.printer().Sprintf(msgTranscodeFailed) }

func (m Messages) UploadFailed() string { return m.printer().Sprintf(msgUploadFailed) }

func (m Messages) DeleteFailed() string { return m.printer().Sprintf(msgDeleteFailed) }
