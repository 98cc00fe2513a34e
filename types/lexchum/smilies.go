package lexchum

// Smilies maps every :shortcode: to its asset under smilies/.
var Smilies = map[string]string{
	":rancorous:":        "pc_rancorous.png",
	":apple:":            "apple.png",
	":bathearst:":        "bathearst.png",
	":cathearst:":        "cathearst.png",
	":woeful:":           "pc_bemused.png",
	":sorrow:":           "blacktear.png",
	":pleasant:":         "pc_pleasant.png",
	":blueghost:":        "blueslimer.gif",
	":slimer:":           "slimer.gif",
	":candycorn:":        "candycorn.png",
	":cheer:":            "cheer.gif",
	":duhjohn:":          "confusedjohn.gif",
	":datrump:":          "datrump.png",
	":facepalm:":         "facepalm.png",
	":bonk:":             "headbonk.gif",
	":mspa:":             "mspa_face.png",
	":gun:":              "mspa_reader.gif",
	":cal:":              "lilcal.png",
	":amazedfirman:":     "pc_amazedfirman.png",
	":amazed:":           "pc_amazed.png",
	":chummy:":           "pc_chummy.png",
	":cool:":             "pccool.png",
	":smooth:":           "pccool.png",
	":distraughtfirman:": "pc_distraughtfirman.png",
	":distraught:":       "pc_distraught.png",
	":insolent:":         "pc_insolent.png",
	":bemused:":          "pc_bemused.png",
	":3:":                "pckitty.png",
	":mystified:":        "pc_mystified.png",
	":pranky:":           "pc_pranky.png",
	":tense:":            "pc_tense.png",
	":record:":           "record.gif",
	":squiddle:":         "squiddle.gif",
	":tab:":              "tab.gif",
	":beetip:":           "theprofessor.png",
	":flipout:":          "weasel.gif",
	":befuddled:":        "what.png",
	":pumpkin:":          "whatpumpkin.png",
	":trollcool:":        "trollcool.png",
	":jadecry:":          "jadespritehead.gif",
	":ecstatic:":         "ecstatic.png",
	":relaxed:":          "relaxed.png",
	":discontent:":       "discontent.png",
	":devious:":          "devious.png",
	":sleek:":            "sleek.png",
	":detestful:":        "detestful.png",
	":mirthful:":         "mirthful.png",
	":manipulative:":     "manipulative.png",
	":vigorous:":         "vigorous.png",
	":perky:":            "perky.png",
	":acceptant:":        "acceptant.png",
	":olliesouty:":       "olliesouty.gif",
	":billiards:":        "poolballS.gif",
	":billiardslarge:":   "poolballL.gif",
	":whatdidyoudo:":     "whatdidyoudo.gif",
	":brocool:":          "pcstrider.png",
	":trollbro:":         "trollbro.png",
	":playagame:":        "saw.gif",
	":trollc00l:":        "trollc00l.gif",
	":suckers:":          "Suckers.gif",
	":scorpio:":          "scorpio.gif",
	":shades:":           "shades.png",
	":honk:":             "honk.png",
}
