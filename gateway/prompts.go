package gateway

// captionPrompt instructs the model to propose captions as strict JSON.
// The category list must match the CaptionCategory enum exactly.
const captionPrompt = `You are a meme caption writer. Look at this image and suggest between 3 and 6 short meme captions for it.

Respond with ONLY a JSON object in exactly this format, no other text:
{"captions": [{"text": "caption text here", "category": "Funny"}]}

The category of each caption must be exactly one of: Funny, Sarcastic, Relatable, Dark, Wholesome.
Keep each caption under 12 words. Do not use hashtags or emoji.`

// analysisPrompt instructs the model to describe the image as strict JSON.
const analysisPrompt = `Analyze this image for a meme creation tool.

Respond with ONLY a JSON object in exactly this format, no other text:
{"description": "one or two sentences describing the image", "tags": ["tag1", "tag2"]}

Provide 3 to 8 short lowercase tags ordered from most to least relevant.`
