package bot

import (
	"fmt"
	"strings"

	"github.com/etlefig/Bootschappenbot/internal/category"
	"github.com/etlefig/Bootschappenbot/internal/errors"
	"github.com/etlefig/Bootschappenbot/internal/item"
)

// ApologyText is what transports send when Handle returns an error.
const ApologyText = "Er ging iets mis. Probeer het later nog eens."

const startText = "Ik hou je boodschappenlijst bij. Typ gewoon wat je nodig hebt, of kijk bij /help."

const helpText = `Zo werkt het:
melk - zet melk op Boodschappen
menu: lasagne - zet lasagne op het Weekmenu
toko: sambal - zet sambal op de Toko-lijst
melk cat: Zuivel & Eieren - kies zelf de categorie
cat: Dranken - wat je hierna typt komt onder Dranken (cat: wist dit)
done: melk - vink melk af

Commando's:
/add <tekst>, /menuadd <tekst>, /tokoadd <tekst>
/list [weekmenu|toko]
/done <tekst>
/clear [weekmenu|toko] [done]
/setcat [weekmenu|toko] <nummer> <categorie>
/remove [weekmenu|toko] <nummer>
/categories`

const (
	usageAdd      = "Gebruik: /add melk, brood"
	usageMenuAdd  = "Gebruik: /menuadd lasagne"
	usageTokoAdd  = "Gebruik: /tokoadd sambal"
	usageDone     = "Gebruik: /done melk"
	usageSetCat   = "Gebruik: /setcat [weekmenu|toko] <nummer> <categorie>"
	usageRemove   = "Gebruik: /remove [weekmenu|toko] <nummer>"
	categoryReset = "Categorie gewist."
)

func addedReply(list item.List, cat string, explicit bool) string {
	if list != item.ListDefault && !explicit {
		return fmt.Sprintf("Toegevoegd aan %s.", list.Title())
	}
	return fmt.Sprintf("Toegevoegd aan %s onder %s.", list.Title(), cat)
}

func doneReply(it item.Item) string {
	return fmt.Sprintf("Afgevinkt: %s (%s).", it.Text, it.List.Title())
}

func sessionCategoryReply(cat string) string {
	return fmt.Sprintf("Categorie ingesteld op %s.", cat)
}

func setCategoryReply(it item.Item) string {
	return fmt.Sprintf("%s staat nu onder %s.", it.Text, it.Category)
}

func removedReply(it item.Item) string {
	return fmt.Sprintf("Verwijderd: %s (%s).", it.Text, it.List.Title())
}

func clearedReply(list item.List) string {
	return fmt.Sprintf("%s geleegd.", list.Title())
}

func clearedDoneReply(n int) string {
	if n == 1 {
		return "1 afgevinkt item verwijderd."
	}
	return fmt.Sprintf("%d afgevinkte items verwijderd.", n)
}

func categoriesReply() string {
	return "Categorieën:\n" + strings.Join(category.Names(), "\n")
}

func unknownCommandReply(cmd string) string {
	return fmt.Sprintf("Onbekend commando /%s. Kijk bij /help.", cmd)
}

// userReply turns a user-facing error into reply text. ok is false for
// errors that should reach the transport (INTERNAL and anything unknown).
// silent is true for input that gets no reply at all.
func userReply(err error) (text string, silent, ok bool) {
	bErr, isBot := errors.As(err)
	if !isBot {
		return "", false, false
	}

	switch bErr.Code {
	case errors.ErrEmptyInput:
		return "", true, true
	case errors.ErrInvalidCategory:
		name, _ := bErr.Details["category"].(string)
		return fmt.Sprintf("Onbekende categorie %q. Kies uit: %s.", name, strings.Join(category.Names(), "; ")), false, true
	case errors.ErrNoMatch:
		match, _ := bErr.Details["match"].(string)
		return fmt.Sprintf("Niets gevonden voor %q.", match), false, true
	case errors.ErrNotFound:
		list, _ := bErr.Details["list"].(string)
		pos, _ := bErr.Details["position"].(int)
		return fmt.Sprintf("Nummer %d bestaat niet op %s.", pos, item.List(list).Title()), false, true
	case errors.ErrInvalidRequest:
		return bErr.Message, false, true
	default:
		return "", false, false
	}
}
