package graph

import "strings"

// ResourceTypeGeneral is the DataCite resourceTypeGeneral vocabulary.
type ResourceTypeGeneral string

const (
	TypeAudiovisual         ResourceTypeGeneral = "Audiovisual"
	TypeBook                ResourceTypeGeneral = "Book"
	TypeBookChapter         ResourceTypeGeneral = "BookChapter"
	TypeCollection          ResourceTypeGeneral = "Collection"
	TypeComputationalNotes  ResourceTypeGeneral = "ComputationalNotebook"
	TypeConferencePaper     ResourceTypeGeneral = "ConferencePaper"
	TypeConferenceProc      ResourceTypeGeneral = "ConferenceProceeding"
	TypeDataPaper           ResourceTypeGeneral = "DataPaper"
	TypeDataset             ResourceTypeGeneral = "Dataset"
	TypeDissertation        ResourceTypeGeneral = "Dissertation"
	TypeEvent               ResourceTypeGeneral = "Event"
	TypeImage               ResourceTypeGeneral = "Image"
	TypeInstrument          ResourceTypeGeneral = "Instrument"
	TypeInteractiveResource ResourceTypeGeneral = "InteractiveResource"
	TypeJournal             ResourceTypeGeneral = "Journal"
	TypeJournalArticle      ResourceTypeGeneral = "JournalArticle"
	TypeModel               ResourceTypeGeneral = "Model"
	TypePeerReview          ResourceTypeGeneral = "PeerReview"
	TypePhysicalObject      ResourceTypeGeneral = "PhysicalObject"
	TypePreprint            ResourceTypeGeneral = "Preprint"
	TypeReport              ResourceTypeGeneral = "Report"
	TypeService             ResourceTypeGeneral = "Service"
	TypeSoftware            ResourceTypeGeneral = "Software"
	TypeSound               ResourceTypeGeneral = "Sound"
	TypeStandard            ResourceTypeGeneral = "Standard"
	TypeStudyRegistration   ResourceTypeGeneral = "StudyRegistration"
	TypeText                ResourceTypeGeneral = "Text"
	TypeWorkflow            ResourceTypeGeneral = "Workflow"
	TypeOther               ResourceTypeGeneral = "Other"
)

var resourceTypeGenerals = []ResourceTypeGeneral{
	TypeAudiovisual, TypeBook, TypeBookChapter, TypeCollection,
	TypeComputationalNotes, TypeConferencePaper, TypeConferenceProc,
	TypeDataPaper, TypeDataset, TypeDissertation, TypeEvent, TypeImage,
	TypeInstrument, TypeInteractiveResource, TypeJournal,
	TypeJournalArticle, TypeModel, TypePeerReview, TypePhysicalObject,
	TypePreprint, TypeReport, TypeService, TypeSoftware, TypeSound,
	TypeStandard, TypeStudyRegistration, TypeText, TypeWorkflow, TypeOther,
}

// ParseResourceTypeGeneral maps a label to the closed vocabulary,
// tolerating case and spacing differences. Unrecognized labels map to
// Other; an empty label stays empty so callers can apply their default.
func ParseResourceTypeGeneral(label string) ResourceTypeGeneral {
	collapsed := strings.ToLower(strings.Join(strings.Fields(label), ""))
	if collapsed == "" {
		return ""
	}
	for _, t := range resourceTypeGenerals {
		if strings.ToLower(string(t)) == collapsed {
			return t
		}
	}
	switch collapsed {
	case "physicalsample", "sample", "specimen":
		return TypePhysicalObject
	case "data":
		return TypeDataset
	}
	return TypeOther
}

// DefaultTypeGeneral returns the resourceTypeGeneral to use when a
// resource carries none: PhysicalObject for samples, Dataset otherwise.
func (r *Resource) DefaultTypeGeneral() ResourceTypeGeneral {
	if r.ResourceTypeGeneral != "" {
		return r.ResourceTypeGeneral
	}
	if r.IsSample {
		return TypePhysicalObject
	}
	return TypeDataset
}
