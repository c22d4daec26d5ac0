package parser

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"net/mail"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/richardlehane/mscfb"
	"golang.org/x/text/encoding/unicode"

	"github.com/dhcgn/eml-to-pdf/model"
)

// MAPI property ids used by the .msg mapping.
const (
	propSubject          = 0x0037
	propClientSubmit     = 0x0039
	propSentRepName      = 0x0042
	propTransportHeaders = 0x007D
	propSenderName       = 0x0C1A
	propDisplayTo        = 0x0E04
	propDeliveryTime     = 0x0E06
	propBody             = 0x1000
	propHTML             = 0x1013
	propAttachLongName   = 0x3707
	propAttachMime       = 0x370E
)

// MAPI property types carried in the stream name suffix.
const (
	typeString8 = 0x001E
	typeUnicode = 0x001F
	typeSystime = 0x0040
	typeBinary  = 0x0102
)

const substgPrefix = "__substg1.0_"

var utf16Decoder = unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM).NewDecoder()

// parseMSG reads an Outlook compound-file message and maps its MAPI
// properties onto a NormalizedMessage. Unlike eml parsing there is no
// partial record: any structural failure fails the whole file.
func parseMSG(path string) (*model.NormalizedMessage, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open msg: %w", err)
	}
	defer file.Close()

	doc, err := mscfb.New(file)
	if err != nil {
		return nil, fmt.Errorf("parse msg: %w", err)
	}

	props := make(map[uint16]string)
	attachProps := make(map[string]map[uint16]string)
	attachOrder := []string{}
	var propertiesStream []byte

	for {
		entry, err := doc.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parse msg: %w", err)
		}

		attachStorage := attachmentStorage(entry.Path)
		if entry.Name == "__properties_version1.0" && attachStorage == "" && len(entry.Path) == 0 {
			data, err := io.ReadAll(entry)
			if err != nil {
				return nil, fmt.Errorf("parse msg properties: %w", err)
			}
			propertiesStream = data
			continue
		}

		id, typ, ok := splitSubstgName(entry.Name)
		if !ok {
			continue
		}

		data, err := io.ReadAll(entry)
		if err != nil {
			return nil, fmt.Errorf("parse msg stream %s: %w", entry.Name, err)
		}
		value := decodeProperty(data, typ)

		switch {
		case attachStorage != "":
			if _, seen := attachProps[attachStorage]; !seen {
				attachProps[attachStorage] = make(map[uint16]string)
				attachOrder = append(attachOrder, attachStorage)
			}
			attachProps[attachStorage][id] = value
		case len(entry.Path) == 0:
			props[id] = value
		}
	}

	msg := &model.NormalizedMessage{
		Subject:   model.DefaultSubject,
		Sender:    model.DefaultSender,
		Recipient: model.DefaultRecipient,
		DateRaw:   model.DefaultDate,
	}

	if v := strings.TrimSpace(props[propSubject]); v != "" {
		msg.Subject = v
	}
	if v := strings.TrimSpace(props[propSenderName]); v != "" {
		msg.Sender = v
	} else if v := strings.TrimSpace(props[propSentRepName]); v != "" {
		msg.Sender = v
	}
	if v := strings.TrimSpace(props[propDisplayTo]); v != "" {
		msg.Recipient = v
	}
	msg.BodyText = props[propBody]
	msg.BodyHTML = props[propHTML]

	msg.Date, msg.DateRaw = resolveMsgDate(propertiesStream, props[propTransportHeaders])

	for _, storage := range attachOrder {
		p := attachProps[storage]
		msg.Attachments = append(msg.Attachments, model.Attachment{
			Filename:    p[propAttachLongName],
			ContentType: p[propAttachMime],
		})
	}

	return msg, nil
}

// splitSubstgName decodes a "__substg1.0_XXXXTTTT" stream name into its
// property id and type.
func splitSubstgName(name string) (id, typ uint16, ok bool) {
	if !strings.HasPrefix(name, substgPrefix) || len(name) != len(substgPrefix)+8 {
		return 0, 0, false
	}
	idPart, err := strconv.ParseUint(name[len(substgPrefix):len(substgPrefix)+4], 16, 16)
	if err != nil {
		return 0, 0, false
	}
	typPart, err := strconv.ParseUint(name[len(substgPrefix)+4:], 16, 16)
	if err != nil {
		return 0, 0, false
	}
	return uint16(idPart), uint16(typPart), true
}

// attachmentStorage returns the "__attach_version1.0_#N" storage a stream
// lives under, or the empty string for message-level streams. Recipient
// storages are ignored by the caller falling through to the default case.
func attachmentStorage(path []string) string {
	for _, p := range path {
		if strings.HasPrefix(p, "__attach_version1.0_") {
			return p
		}
	}
	return ""
}

func decodeProperty(data []byte, typ uint16) string {
	switch typ {
	case typeUnicode:
		decoded, err := utf16Decoder.Bytes(data)
		if err != nil {
			return string(data)
		}
		return strings.TrimRight(string(decoded), "\x00")
	case typeString8, typeBinary:
		return strings.TrimRight(string(data), "\x00")
	default:
		return string(data)
	}
}

// resolveMsgDate picks the message date from, in order, the delivery time,
// the client submit time, and a Date header inside the transport headers.
func resolveMsgDate(propertiesStream []byte, transportHeaders string) (time.Time, string) {
	if t, ok := fixedProperty(propertiesStream, propDeliveryTime); ok {
		return t, t.Format(time.RFC1123Z)
	}
	if t, ok := fixedProperty(propertiesStream, propClientSubmit); ok {
		return t, t.Format(time.RFC1123Z)
	}
	if raw := headerLine(transportHeaders, "Date"); raw != "" {
		if t, err := mail.ParseDate(raw); err == nil {
			return t, raw
		}
		return time.Time{}, raw
	}
	return time.Time{}, model.DefaultDate
}

// fixedProperty scans the fixed-width property stream for a PT_SYSTIME
// value. The message-level stream carries a 32 byte header followed by
// 16 byte records: tag, flags, value.
func fixedProperty(stream []byte, id uint16) (time.Time, bool) {
	const headerLen = 32
	if len(stream) < headerLen {
		return time.Time{}, false
	}
	want := uint32(id)<<16 | typeSystime
	for off := headerLen; off+16 <= len(stream); off += 16 {
		tag := binary.LittleEndian.Uint32(stream[off:])
		if tag != want {
			continue
		}
		filetime := binary.LittleEndian.Uint64(stream[off+8:])
		return filetimeToTime(filetime), true
	}
	return time.Time{}, false
}

// filetimeToTime converts a Windows FILETIME (100ns ticks since 1601) to a
// time.Time. Split into seconds and remainder to avoid int64 overflow.
func filetimeToTime(ft uint64) time.Time {
	const epochDelta = 11644473600 // seconds between 1601-01-01 and 1970-01-01
	secs := int64(ft/10_000_000) - epochDelta
	nanos := int64(ft%10_000_000) * 100
	return time.Unix(secs, nanos).UTC()
}

// headerLine extracts a single header value from transport headers text.
func headerLine(headers, name string) string {
	scanner := bufio.NewScanner(strings.NewReader(headers))
	prefix := strings.ToLower(name) + ":"
	for scanner.Scan() {
		line := scanner.Text()
		if strings.HasPrefix(strings.ToLower(line), prefix) {
			return strings.TrimSpace(line[len(prefix):])
		}
	}
	return ""
}
